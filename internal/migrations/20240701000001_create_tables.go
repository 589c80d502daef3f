package migrations

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/mkoziy/paddock/internal/models"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		modelsList := []interface{}{
			(*models.Season)(nil),
			(*models.Event)(nil),
			(*models.Session)(nil),
			(*models.Driver)(nil),
			(*models.Lap)(nil),
			(*models.PitStop)(nil),
			(*models.ImportRun)(nil),
		}

		for _, model := range modelsList {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().WithForeignKeys().Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		modelsList := []interface{}{
			(*models.ImportRun)(nil),
			(*models.PitStop)(nil),
			(*models.Lap)(nil),
			(*models.Driver)(nil),
			(*models.Session)(nil),
			(*models.Event)(nil),
			(*models.Season)(nil),
		}

		for _, model := range modelsList {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	})
}
