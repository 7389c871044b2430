package main

import (
	"kaimono/internal/infra/persistence/model"

	"gorm.io/gen"
)

func main() {
	models := []any{
		model.PlaceModel{},
		model.ShoppingItemModel{},
		model.ItemPlaceLinkModel{},
		model.GeofenceRegistrationModel{},
		model.NotificationStateModel{},
	}

	gen := gen.NewGenerator(gen.Config{
		OutPath: "./internal/infra/persistence/postgres/query",
	})

	gen.ApplyBasic(models...)

	gen.Execute()
}
