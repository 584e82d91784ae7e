package repository

import (
	"context"
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/medreza/honcho-voucher-service/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	vouchersCollection = "vouchers"
	bulkBatchSize      = 500
)

// MongoVoucherRepository keeps one document per voucher, keyed by code.
type MongoVoucherRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoVoucherRepository(client *mongo.Client, database string) *MongoVoucherRepository {
	return &MongoVoucherRepository{
		client: client,
		coll:   client.Database(database).Collection(vouchersCollection),
	}
}

func (r *MongoVoucherRepository) GetVoucher(ctx context.Context, code string) (*models.Voucher, error) {
	var v models.Voucher
	err := r.coll.FindOne(ctx, bson.M{"_id": code}).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVoucherNotFound
		}
		return nil, errors.Wrapf(err, "failed to get voucher %q", code)
	}
	return &v, nil
}

func (r *MongoVoucherRepository) UpsertVoucher(ctx context.Context, v models.Voucher) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": v.Code}, v, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrapf(err, "failed to upsert voucher %q", v.Code)
	}
	return nil
}

// UpsertVouchers writes ordered batches as the sequence is drained. Batches
// flushed before a failure stay applied.
func (r *MongoVoucherRepository) UpsertVouchers(ctx context.Context, vouchers iter.Seq2[models.Voucher, error]) (int, error) {
	var (
		applied int
		batch   = make([]mongo.WriteModel, 0, bulkBatchSize)
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := r.coll.BulkWrite(ctx, batch, options.BulkWrite().SetOrdered(true)); err != nil {
			return errors.Wrap(err, "failed to bulk upsert vouchers")
		}
		applied += len(batch)
		batch = batch[:0]
		return nil
	}

	for v, err := range vouchers {
		if err != nil {
			return applied, err
		}
		batch = append(batch, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": v.Code}).
			SetReplacement(v).
			SetUpsert(true))
		if len(batch) == bulkBatchSize {
			if err := flush(); err != nil {
				return applied, err
			}
		}
	}

	if err := flush(); err != nil {
		return applied, err
	}
	return applied, nil
}

func (r *MongoVoucherRepository) ListVouchers(ctx context.Context) ([]models.Voucher, error) {
	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list vouchers")
	}

	vouchers := make([]models.Voucher, 0)
	if err := cursor.All(ctx, &vouchers); err != nil {
		return nil, errors.Wrap(err, "failed to decode vouchers")
	}
	return vouchers, nil
}

func (r *MongoVoucherRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
