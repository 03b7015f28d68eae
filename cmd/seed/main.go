package main

import (
	"context"
	"fmt"
	"time"

	"go-obra/internal/config"
	"go-obra/internal/database"
	"go-obra/internal/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var contractors = []string{"Constructora Andina", "Grupo Pacífico", "Sin especificar"}

var processes = []struct {
	proceso string
	und     string
}{
	{"Vaciado de concreto", "m3"},
	{"Encofrado de muros", "m2"},
	{"Colocación de acero", "kg"},
	{"Tarrajeo de cielorraso", "m2"},
}

var crews = []struct {
	nombre    string
	categoria string
}{
	{"Juan Pérez", "OPERARIO"},
	{"Luis Quispe", "OFICIAL"},
	{"María Huamán", "PEON"},
	{"Carlos Rojas", "OPERARIO"},
}

// Seed inserts demo reports with activities and crew hours, fifteen
// days back from today, then shuts the app down.
func Seed(
	lc fx.Lifecycle,
	db *database.MongodbDB,
	log *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						log.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
				defer cancel()

				log.Info("Seeding demo reports...")
				if err := seedReports(ctx, db); err != nil {
					log.Error("Seeding failed", zap.Error(err))
					return
				}
				log.Info("Seeding completed")
			}()
			return nil
		},
	})
}

func seedReports(ctx context.Context, db *database.MongodbDB) error {
	reports := db.DB.Collection("Reportes")
	activities := db.DB.Collection("actividades")
	crew := db.DB.Collection("mano_obra")

	now := time.Now()
	for day := 0; day < 15; day++ {
		fecha := now.AddDate(0, 0, -day).Format("2006-01-02")
		reportID := uuid.NewString()

		_, err := reports.InsertOne(ctx, bson.M{
			"_id":                  reportID,
			"fecha":                fecha,
			"elaboradoPor":         fmt.Sprintf("Residente %d", day%3+1),
			"subcontratistaBloque": contractors[day%len(contractors)],
			"timestamp":            now.AddDate(0, 0, -day).Format(time.RFC3339),
		})
		if err != nil {
			return err
		}

		nActs := day%len(processes) + 1
		for i := 0; i < nActs; i++ {
			p := processes[i]
			_, err := activities.InsertOne(ctx, bson.M{
				"_id":       uuid.NewString(),
				"report_id": reportID,
				"orden":     i,
				"proceso":   p.proceso,
				"und":       p.und,
				"metradoP":  float64(20 + 10*i),
				"metradoE":  float64(10 + 8*i + day%5),
				"ubicacion": fmt.Sprintf("Bloque %c", 'A'+day%3),
			})
			if err != nil {
				return err
			}
		}

		for w := 0; w <= day%len(crews); w++ {
			hours := make([]float64, nActs)
			for i := range hours {
				hours[i] = float64(2 + (day+w+i)%4)
			}
			_, err := crew.InsertOne(ctx, bson.M{
				"_id":        uuid.NewString(),
				"report_id":  reportID,
				"trabajador": crews[w].nombre,
				"categoria":  crews[w].categoria,
				"horas":      hours,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
