package indicator

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Indicator is a user-defined KPI expression evaluated against the
// metric snapshot of the current filter window
type Indicator struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Nombre      string             `bson:"nombre" json:"nombre"`
	Descripcion string             `bson:"descripcion,omitempty" json:"descripcion,omitempty"`
	Expresion   string             `bson:"expresion" json:"expresion"`
	CreatedBy   string             `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Evaluation is the computed value of one indicator
type Evaluation struct {
	Indicator Indicator `json:"indicator"`
	Valor     float64   `json:"valor"`
}
