package ingest

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lead-scoring-service/internal/config"
	"lead-scoring-service/internal/dataset"
	"lead-scoring-service/internal/schema"
)

// MongoSource exports every document of the configured collection as one
// table row. Column order follows the schema declaration so downstream
// stages see a stable layout regardless of document key order.
type MongoSource struct {
	cfg    config.MongoConfig
	schema *schema.Schema
}

func NewMongoSource(cfg config.MongoConfig, s *schema.Schema) *MongoSource {
	return &MongoSource{cfg: cfg, schema: s}
}

func (s *MongoSource) Fetch(ctx context.Context) (*dataset.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warnf("disconnect mongodb: %v", err)
		}
	}()

	coll := client.Database(s.cfg.Database).Collection(s.cfg.Collection)
	cur, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find %s.%s: %w", s.cfg.Database, s.cfg.Collection, err)
	}
	defer cur.Close(ctx)

	table := dataset.NewTable(s.schema.Features)
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		row := make([]string, len(s.schema.Features))
		for i, col := range s.schema.Features {
			row[i] = cellString(doc[col])
		}
		table.Rows = append(table.Rows, row)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate cursor: %w", err)
	}

	log.WithFields(log.Fields{
		"collection": s.cfg.Collection,
		"documents":  table.Len(),
	}).Info("collection exported")

	return table, nil
}

// cellString renders a BSON value as a CSV cell. Absent values and the
// literal "na" placeholder used in the source data become empty cells.
func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		if t == "na" {
			return ""
		}
		return t
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return "0"
	case primitive.ObjectID:
		return t.Hex()
	default:
		return fmt.Sprintf("%v", t)
	}
}
