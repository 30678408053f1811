package seed

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/Korrojo/mongoops/internal/model"
)

// Kinds of synthetic records the seeder can produce.
const (
	KindUsers             = "users"
	KindPatients          = "patients"
	KindStaffAvailability = "staff-availability"
)

// DefaultCollections maps a seed kind to the collection it targets.
var DefaultCollections = map[string]string{
	KindUsers:             "Users",
	KindPatients:          "Patients",
	KindStaffAvailability: "StaffAvailability",
}

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

var userRoles = []string{"provider", "nurse", "scheduler", "admin"}

// Generator produces deterministic synthetic documents for one kind.
type Generator struct {
	faker *gofakeit.Faker
	kind  string
}

// NewGenerator returns a Generator for kind. The same seed always yields
// the same record sequence.
func NewGenerator(kind string, seed uint64) (*Generator, error) {
	if _, ok := DefaultCollections[kind]; !ok {
		return nil, fmt.Errorf("unknown seed kind %q", kind)
	}
	return &Generator{faker: gofakeit.New(seed), kind: kind}, nil
}

// Collection returns the default target collection for the generator's kind.
func (g *Generator) Collection() string {
	return DefaultCollections[g.kind]
}

// Generate produces n documents of the generator's kind.
func (g *Generator) Generate(n int) []interface{} {
	docs := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		switch g.kind {
		case KindUsers:
			docs = append(docs, g.user(i))
		case KindPatients:
			docs = append(docs, g.patient(i))
		case KindStaffAvailability:
			docs = append(docs, g.staffAvailability(i))
		}
	}
	return docs
}

func (g *Generator) user(i int) *model.User {
	first := g.faker.FirstName()
	last := g.faker.LastName()
	role := userRoles[i%len(userRoles)]
	u := &model.User{
		UserName:  fmt.Sprintf("%s.%s%03d", first, last, i),
		FirstName: first,
		LastName:  last,
		Email:     g.faker.Email(),
		Phone:     g.faker.Phone(),
		Role:      role,
		Active:    true,
		CreatedAt: g.pastDate(),
	}
	if role == "provider" {
		u.NPI = g.faker.DigitN(10)
		u.ProviderID = g.faker.UUID()
	}
	return u
}

func (g *Generator) patient(i int) *model.Patient {
	return &model.Patient{
		FirstName:   g.faker.FirstName(),
		LastName:    g.faker.LastName(),
		DateOfBirth: g.faker.DateRange(time.Date(1930, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2010, 12, 31, 0, 0, 0, 0, time.UTC)),
		Gender:      g.faker.Gender(),
		Email:       g.faker.Email(),
		Phone:       g.faker.Phone(),
		Address: model.Address{
			Street: g.faker.Street(),
			City:   g.faker.City(),
			State:  g.faker.StateAbr(),
			Zip:    g.faker.Zip(),
		},
		MRN:       fmt.Sprintf("MRN-%s", g.faker.DigitN(8)),
		CreatedAt: g.pastDate(),
	}
}

func (g *Generator) staffAvailability(i int) *model.StaffAvailability {
	startHour := 7 + g.faker.Number(0, 3)
	hours := 6 + g.faker.Number(0, 4)
	return &model.StaffAvailability{
		ProviderID: g.faker.UUID(),
		Weekday:    weekdays[i%len(weekdays)],
		Blocks: []model.AvailabilityBlock{
			{
				Start: fmt.Sprintf("%02d:00", startHour),
				End:   fmt.Sprintf("%02d:00", startHour+hours),
			},
		},
		Location:  g.faker.City(),
		UpdatedAt: g.pastDate(),
	}
}

func (g *Generator) pastDate() time.Time {
	return g.faker.DateRange(
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	)
}
