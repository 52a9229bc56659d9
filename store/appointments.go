package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"CareSync360/models"
)

// Appointments reads the appointments collection and performs the one write
// the engine is allowed: correcting a userId reference.
type Appointments struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewAppointments(coll *mongo.Collection, timeout time.Duration) *Appointments {
	return &Appointments{coll: coll, timeout: timeout}
}

// GetByID returns (nil, nil) when the appointment does not exist.
func (a *Appointments) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var appt models.Appointment
	err := a.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&appt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetching appointment %s: %v", ErrStoreUnavailable, id, err)
	}
	if err := appt.Validate(); err != nil {
		return nil, err
	}
	return &appt, nil
}

// ListAll walks the whole collection through the cursor, handing one decoded
// appointment at a time to fn. The collection is never loaded into memory at
// once. Returning an error from fn stops the walk and surfaces that error.
func (a *Appointments) ListAll(ctx context.Context, fn func(models.Appointment) error) error {
	return a.list(ctx, bson.M{}, fn)
}

// ListCreatedSince walks only appointments with createdAt >= since. This is a
// targeted range query, not a client-side filter over a full scan.
func (a *Appointments) ListCreatedSince(ctx context.Context, since time.Time, fn func(models.Appointment) error) error {
	return a.list(ctx, bson.M{"createdAt": bson.M{"$gte": since}}, fn)
}

func (a *Appointments) list(ctx context.Context, filter bson.M, fn func(models.Appointment) error) error {
	findCtx, cancel := context.WithTimeout(ctx, a.timeout)
	cursor, err := a.coll.Find(findCtx, filter)
	cancel()
	if err != nil {
		return fmt.Errorf("%w: querying appointments: %v", ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var appt models.Appointment
		if err := cursor.Decode(&appt); err != nil {
			return fmt.Errorf("%w: decoding appointment: %v", models.ErrMalformedRecord, err)
		}
		if err := appt.Validate(); err != nil {
			return err
		}
		if err := fn(appt); err != nil {
			return err
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("%w: iterating appointments: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// SetUser writes the corrected userId and stamps updatedAt. This is the only
// mutation in the entire engine, and it touches exactly one document.
func (a *Appointments) SetUser(ctx context.Context, appointmentID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"userId":    userID,
		"updatedAt": time.Now().UTC(),
	}}
	res, err := a.coll.UpdateOne(ctx, bson.M{"_id": appointmentID}, update)
	if err != nil {
		return fmt.Errorf("%w: updating appointment %s: %v", ErrStoreUnavailable, appointmentID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
