package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vistoria/inspection-api/internal/core/domain"
)

// Index names are matched against duplicate-key errors to pick the domain
// error, so they must stay stable.
const (
	idxUserEmail         = "users_email_unique"
	idxClientEmail       = "clients_email_unique"
	idxCompanyDocument   = "companies_document_unique"
	idxInspectionPending = "inspections_pending_property_unique"
	idxContestOpen       = "contests_open_inspection_unique"
	idxSyncClientOp      = "sync_client_op_unique"
)

func unique(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name).SetUnique(true)}
}

func partialUnique(name string, keys bson.D, filter bson.M) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(name).SetUnique(true).SetPartialFilterExpression(filter),
	}
}

func plain(keys ...string) mongo.IndexModel {
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: 1})
	}
	return mongo.IndexModel{Keys: d}
}

// EnsureIndexes creates the indexes every repository relies on. The partial
// filter on contests uses $in and needs MongoDB 6.0 or later.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	plan := map[string][]mongo.IndexModel{
		collectionUsers: {
			unique(idxUserEmail, bson.D{{Key: "email", Value: 1}}),
			plain("company_id", "role"),
		},
		collectionClients: {
			unique(idxClientEmail, bson.D{{Key: "email", Value: 1}}),
		},
		collectionCompanies: {
			partialUnique(idxCompanyDocument, bson.D{{Key: "document", Value: 1}},
				bson.M{"document": bson.M{"$type": "string"}}),
		},
		collectionProperties: {
			plain("company_id", "created_at"),
			plain("company_id", "client_id"),
		},
		collectionInspections: {
			partialUnique(idxInspectionPending, bson.D{{Key: "property_id", Value: 1}},
				bson.M{"status": domain.InspectionPending}),
			plain("company_id", "status"),
			plain("company_id", "scheduled_date"),
			plain("client_id"),
			plain("inspector_id"),
		},
		collectionUploads: {
			plain("company_id", "related_id"),
		},
		collectionContests: {
			partialUnique(idxContestOpen, bson.D{{Key: "inspection_id", Value: 1}},
				bson.M{"status": bson.M{"$in": bson.A{domain.ContestOpen, domain.ContestUnderReview}}}),
			plain("company_id", "status"),
			plain("client_id"),
		},
		collectionSync: {
			unique(idxSyncClientOp, bson.D{
				{Key: "company_id", Value: 1},
				{Key: "device_id", Value: 1},
				{Key: "client_op_id", Value: 1},
			}),
			plain("status", "_id"),
		},
	}

	for name, models := range plan {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}
