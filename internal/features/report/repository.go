package report

import (
	"context"

	"go-obra/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageQuery is one paged scan over the Reportes collection
type PageQuery struct {
	Start          string // inclusive ISO day
	End            string // inclusive ISO day
	Subcontratista string
	ElaboradoPor   string
	Limit          int  // <= 0 means unbounded
	After          *PageCursor
	Backward       bool // previous-page navigation
}

type ReportRepository interface {
	FindPage(ctx context.Context, q PageQuery) ([]Report, error)
	Count(ctx context.Context, q PageQuery) (int64, error)
	Activities(ctx context.Context, reportID string) ([]Activity, error)
	CrewHours(ctx context.Context, reportID string) ([]Worker, error)
}

type ReportRepositoryImpl struct {
	Reports     *mongo.Collection
	ActivityCol *mongo.Collection
	CrewCol     *mongo.Collection
}

func NewReportRepository(db *database.MongodbDB) ReportRepository {
	return &ReportRepositoryImpl{
		Reports:     db.DB.Collection("Reportes"),
		ActivityCol: db.DB.Collection("actividades"),
		CrewCol:     db.DB.Collection("mano_obra"),
	}
}

// buildReportFilter builds the remote constraint set. Equality filters
// are appended only when non-empty so unset filters never demand a
// composite index on the store.
func buildReportFilter(q PageQuery) bson.M {
	filter := bson.M{
		"fecha": bson.M{"$gte": q.Start, "$lte": q.End},
	}
	if q.Subcontratista != "" {
		filter["subcontratistaBloque"] = q.Subcontratista
	}
	if q.ElaboradoPor != "" {
		filter["elaboradoPor"] = q.ElaboradoPor
	}
	return filter
}

// cursorFilter positions the scan after a previously seen document,
// with _id breaking ties within a day.
func cursorFilter(c *PageCursor, backward bool) bson.M {
	if backward {
		return bson.M{"$or": []bson.M{
			{"fecha": bson.M{"$gt": c.Fecha}},
			{"fecha": c.Fecha, "_id": bson.M{"$gt": c.ID}},
		}}
	}
	return bson.M{"$or": []bson.M{
		{"fecha": bson.M{"$lt": c.Fecha}},
		{"fecha": c.Fecha, "_id": bson.M{"$lt": c.ID}},
	}}
}

func (r *ReportRepositoryImpl) FindPage(ctx context.Context, q PageQuery) ([]Report, error) {
	filter := buildReportFilter(q)
	if q.After != nil {
		filter = bson.M{"$and": []bson.M{filter, cursorFilter(q.After, q.Backward)}}
	}

	// Backward pages run the range ascending and are reversed in
	// memory, yielding an exact previous page rather than the
	// start-after approximation.
	sort := bson.D{{Key: "fecha", Value: -1}, {Key: "_id", Value: -1}}
	if q.Backward {
		sort = bson.D{{Key: "fecha", Value: 1}, {Key: "_id", Value: 1}}
	}

	opts := options.Find().SetSort(sort)
	if q.Limit > 0 {
		opts = opts.SetLimit(int64(q.Limit))
	}

	cursor, err := r.Reports.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}

	if q.Backward {
		for i, j := 0, len(reports)-1; i < j; i, j = i+1, j-1 {
			reports[i], reports[j] = reports[j], reports[i]
		}
	}
	return reports, nil
}

func (r *ReportRepositoryImpl) Count(ctx context.Context, q PageQuery) (int64, error) {
	return r.Reports.CountDocuments(ctx, buildReportFilter(q))
}

func (r *ReportRepositoryImpl) Activities(ctx context.Context, reportID string) ([]Activity, error) {
	cursor, err := r.ActivityCol.Find(ctx, bson.M{"report_id": reportID},
		options.Find().SetSort(bson.D{{Key: "orden", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var activities []Activity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *ReportRepositoryImpl) CrewHours(ctx context.Context, reportID string) ([]Worker, error) {
	cursor, err := r.CrewCol.Find(ctx, bson.M{"report_id": reportID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workers []Worker
	if err := cursor.All(ctx, &workers); err != nil {
		return nil, err
	}
	return workers, nil
}
