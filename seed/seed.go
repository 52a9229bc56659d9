package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"CareSync360/config/db"
	"CareSync360/models"
)

// The store rejects batches above this many operations, so inserts are
// chunked before being sent.
const MaxBatchOps = 500

// Run loads a small demo dataset: a handful of users plus appointments in
// every defect class the engine knows about (missing userId, dangling
// reference, drifted email) alongside healthy ones. Existing documents are
// left alone; seeding an already seeded database inserts nothing.
func Run(ctx context.Context, database *mongo.Database, log zerolog.Logger) error {
	users := database.Collection(db.UsersCollection)
	appointments := database.Collection(db.AppointmentsCollection)

	count, err := users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("checking users collection: %w", err)
	}
	if count > 0 {
		log.Info().Msg("users collection not empty, skipping seed")
		return nil
	}

	userDocs, apptDocs, err := demoDataset()
	if err != nil {
		return err
	}
	if err := insertChunked(ctx, users, userDocs); err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}
	if err := insertChunked(ctx, appointments, apptDocs); err != nil {
		return fmt.Errorf("seeding appointments: %w", err)
	}
	log.Info().Int("users", len(userDocs)).Int("appointments", len(apptDocs)).Msg("seeded demo data")
	return nil
}

func demoDataset() (users []any, appointments []any, err error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme-1234"), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing seed password: %w", err)
	}
	now := time.Now().UTC()

	demoUsers := []models.User{
		{ID: "u1", Email: "amara@example.com", Name: "Amara Osei", Password: string(hash)},
		{ID: "u2", Email: "bruno@example.com", Name: "Bruno Keller", Password: string(hash)},
		{ID: "u3", Email: "chioma@example.com", Name: "Chioma Eze", Password: string(hash)},
	}
	demoAppointments := []models.Appointment{
		// healthy link
		{ID: "apt1", UserID: "u1", PatientEmail: "amara@example.com", PatientName: "Amara Osei",
			Treatment: "Dental Cleaning", Clinic: "Downtown", Date: "12/09/2026", Time: "10:00", CreatedAt: now},
		// created before identity linking existed
		{ID: "apt2", UserID: "", PatientEmail: "bruno@example.com", PatientName: "Bruno Keller",
			Treatment: "Physiotherapy", Clinic: "Riverside", Date: "14/09/2026", Time: "11:30", CreatedAt: now},
		// dangling reference, recoverable through the email
		{ID: "apt3", UserID: "u9", PatientEmail: "chioma@example.com", PatientName: "Chioma Eze",
			Treatment: "Consultation", Clinic: "Downtown", Date: "15/09/2026", Time: "09:00", CreatedAt: now},
		// denormalized email drifted, no user matches it anymore
		{ID: "apt4", UserID: "u2", PatientEmail: "bruno.old@example.com", PatientName: "Bruno Keller",
			Treatment: "Follow-up", Clinic: "Riverside", Date: "18/09/2026", Time: "16:00", CreatedAt: now},
	}

	for _, u := range demoUsers {
		users = append(users, u)
	}
	for _, a := range demoAppointments {
		appointments = append(appointments, a)
	}
	return users, appointments, nil
}

func insertChunked(ctx context.Context, coll *mongo.Collection, docs []any) error {
	for _, chunk := range Chunk(docs, MaxBatchOps) {
		if _, err := coll.InsertMany(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

// Chunk splits docs into slices of at most size elements.
func Chunk(docs []any, size int) [][]any {
	if size < 1 || len(docs) == 0 {
		return nil
	}
	var chunks [][]any
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		chunks = append(chunks, docs[start:end])
	}
	return chunks
}
