package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariebrainware/hospital-booking/model"
	"github.com/ariebrainware/hospital-booking/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collPatients     = "patients"
	collDoctors      = "doctors"
	collAppointments = "appointments"
	collAuditLogs    = "audit_logs"
	collCounters     = "counters"
)

type counter struct {
	ID  string `bson:"_id"`
	Seq uint   `bson:"seq"`
}

// MongoStore is the document-store RecordStore. Ids are sequential integers
// drawn from the counters collection so responses match the SQL backend.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	seed   []model.Doctor
}

// NewMongoStore wraps a connected client and its database.
func NewMongoStore(client *mongo.Client, db *mongo.Database, seed []model.Doctor) *MongoStore {
	return &MongoStore{client: client, db: db, seed: seed}
}

func (s *MongoStore) nextID(ctx context.Context, name string) (uint, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var c counter
	err := s.db.Collection(collCounters).
		FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).
		Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return c.Seq, nil
}

func (s *MongoStore) Initialize(ctx context.Context) error {
	indexes := map[string]mongo.IndexModel{
		collPatients:  {Keys: bson.D{{Key: "name", Value: 1}}},
		collAuditLogs: {Keys: bson.D{{Key: "event_type", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	for coll, idx := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateOne(ctx, idx); err != nil {
			return util.NewInternalError("failed to create index on "+coll, err)
		}
	}

	doctors := s.db.Collection(collDoctors)
	count, err := doctors.CountDocuments(ctx, bson.M{})
	if err != nil {
		return util.NewInternalError("failed to count doctors", err)
	}
	if count > 0 || len(s.seed) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(s.seed))
	for _, d := range s.seed {
		id, err := s.nextID(ctx, collDoctors)
		if err != nil {
			return util.NewInternalError("failed to seed doctors", err)
		}
		d.ID = id
		docs = append(docs, d)
	}
	if _, err := doctors.InsertMany(ctx, docs); err != nil {
		return util.NewInternalError("failed to seed doctors", err)
	}
	return nil
}

func (s *MongoStore) CreatePatient(ctx context.Context, name, email string) (model.Patient, error) {
	if err := validatePatient(name, email); err != nil {
		return model.Patient{}, err
	}

	id, err := s.nextID(ctx, collPatients)
	if err != nil {
		return model.Patient{}, util.NewInternalError("failed to create patient", err)
	}
	patient := model.Patient{ID: id, Name: name, Email: email, CreatedAt: time.Now().UTC()}
	if _, err := s.db.Collection(collPatients).InsertOne(ctx, patient); err != nil {
		return model.Patient{}, util.NewInternalError("failed to create patient", err)
	}
	return patient, nil
}

func (s *MongoStore) FindPatientByName(ctx context.Context, name string) (model.Patient, error) {
	if name == "" {
		return model.Patient{}, util.NewNotFoundError(msgPatientNotFound)
	}

	var patient model.Patient
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	err := s.db.Collection(collPatients).FindOne(ctx, bson.M{"name": name}, opts).Decode(&patient)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Patient{}, util.NewNotFoundError(msgPatientNotFound)
	}
	if err != nil {
		return model.Patient{}, util.NewInternalError("failed to look up patient", err)
	}
	return patient, nil
}

func (s *MongoStore) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	doctors := []model.Doctor{}
	if err := s.findAll(ctx, collDoctors, 1, &doctors); err != nil {
		return nil, util.NewInternalError("failed to list doctors", err)
	}
	return doctors, nil
}

// CreateAppointment looks the patient up and inserts in two steps. The insert
// is a single document write, so a failure leaves nothing behind.
func (s *MongoStore) CreateAppointment(ctx context.Context, req model.AppointmentRequest) (model.Booking, error) {
	if err := validateAppointment(req); err != nil {
		return model.Booking{}, err
	}

	patient, err := s.FindPatientByName(ctx, req.Patient)
	if err != nil {
		return model.Booking{}, err
	}

	id, err := s.nextID(ctx, collAppointments)
	if err != nil {
		return model.Booking{}, util.NewInternalError("failed to create appointment", err)
	}
	appointment := model.Appointment{
		ID:        id,
		Patient:   req.Patient,
		Doctor:    req.Doctor,
		Date:      req.Date,
		Time:      req.Time,
		Status:    model.StatusBooked,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.Collection(collAppointments).InsertOne(ctx, appointment); err != nil {
		return model.Booking{}, util.NewInternalError("failed to create appointment", err)
	}
	return model.Booking{Appointment: appointment, PatientEmail: patient.Email}, nil
}

func (s *MongoStore) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	appointments := []model.Appointment{}
	if err := s.findAll(ctx, collAppointments, -1, &appointments); err != nil {
		return nil, util.NewInternalError("failed to list appointments", err)
	}
	return appointments, nil
}

func (s *MongoStore) DeleteAppointment(ctx context.Context, id uint) error {
	if id == 0 {
		return util.NewValidationError(msgAppointmentIDRequired)
	}
	if _, err := s.db.Collection(collAppointments).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return util.NewInternalError("failed to delete appointment", err)
	}
	return nil
}

func (s *MongoStore) RecordAudit(ctx context.Context, entry *model.AuditLog) error {
	id, err := s.nextID(ctx, collAuditLogs)
	if err != nil {
		return err
	}
	entry.ID = id
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.Collection(collAuditLogs).InsertOne(ctx, entry)
	return err
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) findAll(ctx context.Context, coll string, idOrder int, out interface{}) error {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: idOrder}})
	cursor, err := s.db.Collection(coll).Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}
