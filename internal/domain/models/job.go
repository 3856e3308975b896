// internal/domain/models/job.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Job is the subset of a job posting this service reads. The jobs
// collection is owned elsewhere and may not exist at all.
type Job struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID primitive.ObjectID `bson:"company_id" json:"companyId"`
	IsActive  bool               `bson:"is_active" json:"isActive"`
}
