package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Korrojo/mongoops/internal/model"
)

func TestNewGenerator_UnknownKind(t *testing.T) {
	_, err := NewGenerator("appointments", 1)
	assert.Error(t, err)
}

func TestGenerate_Users(t *testing.T) {
	gen, err := NewGenerator(KindUsers, 42)
	require.NoError(t, err)
	assert.Equal(t, "Users", gen.Collection())

	docs := gen.Generate(8)
	require.Len(t, docs, 8)

	seenProvider := false
	for i, d := range docs {
		u, ok := d.(*model.User)
		require.True(t, ok, "doc %d has type %T", i, d)
		assert.NotEmpty(t, u.UserName)
		assert.NotEmpty(t, u.FirstName)
		assert.NotEmpty(t, u.LastName)
		assert.Contains(t, u.Email, "@")
		assert.True(t, u.Active)
		if u.Role == "provider" {
			seenProvider = true
			assert.Len(t, u.NPI, 10)
			assert.NotEmpty(t, u.ProviderID)
		} else {
			assert.Empty(t, u.NPI)
		}
	}
	// Roles rotate, so 8 documents always include providers.
	assert.True(t, seenProvider)
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := NewGenerator(KindPatients, 7)
	require.NoError(t, err)
	b, err := NewGenerator(KindPatients, 7)
	require.NoError(t, err)

	pa := a.Generate(5)
	pb := b.Generate(5)
	require.Len(t, pb, 5)
	for i := range pa {
		assert.Equal(t, pa[i], pb[i], "doc %d differs between identical seeds", i)
	}
}

func TestGenerate_Patients(t *testing.T) {
	gen, err := NewGenerator(KindPatients, 3)
	require.NoError(t, err)

	docs := gen.Generate(4)
	require.Len(t, docs, 4)
	for _, d := range docs {
		p, ok := d.(*model.Patient)
		require.True(t, ok)
		assert.Regexp(t, `^MRN-\d{8}$`, p.MRN)
		assert.NotEmpty(t, p.Address.State)
		assert.False(t, p.DateOfBirth.IsZero())
	}
}

func TestGenerate_StaffAvailability(t *testing.T) {
	gen, err := NewGenerator(KindStaffAvailability, 9)
	require.NoError(t, err)

	docs := gen.Generate(10)
	require.Len(t, docs, 10)
	for i, d := range docs {
		sa, ok := d.(*model.StaffAvailability)
		require.True(t, ok)
		assert.Equal(t, weekdays[i%len(weekdays)], sa.Weekday)
		require.Len(t, sa.Blocks, 1)
		assert.Regexp(t, `^\d{2}:00$`, sa.Blocks[0].Start)
		assert.Regexp(t, `^\d{2}:00$`, sa.Blocks[0].End)
		assert.Less(t, sa.Blocks[0].Start, sa.Blocks[0].End)
	}
}
