package envelope

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

func decode(t *testing.T, body string) any {
	t.Helper()
	v, err := Decode([]byte(body))
	require.NoError(t, err)
	return v
}

func TestRecords_Shapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		ids  []string
	}{
		{"bare sequence", `[{"id":"b"}]`, []string{"b"}},
		{"data sequence", `{"success":true,"data":[{"id":"a"},{"id":"c"}]}`, []string{"a", "c"}},
		{"container field", `{"bookings":[{"id":"x"}]}`, []string{"x"}},
		{"items field", `{"items":[{"id":"y"}]}`, []string{"y"}},
		{"data.data", `{"success":true,"data":{"data":[{"id":"a"}],"pagination":{"page":1}}}`, []string{"a"}},
		{"data.venues", `{"success":true,"data":{"venues":[{"id":"v"}]}}`, []string{"v"}},
		{"non-object elements skipped", `[{"id":"a"},3,"x",null]`, []string{"a"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recs, err := Records(decode(t, tc.body))
			require.NoError(t, err)
			ids := make([]string, 0, len(recs))
			for _, r := range recs {
				ids = append(ids, r["id"].(string))
			}
			assert.Equal(t, tc.ids, ids)
		})
	}
}

func TestRecords_FailsSoft(t *testing.T) {
	for _, body := range []string{`{}`, `null`, `"hello"`, `{"data":{"id":"a"}}`, `42`} {
		recs, err := Records(decode(t, body))
		assert.NotNil(t, recs, body)
		assert.Empty(t, recs, body)
		assert.ErrorIs(t, err, models.ErrShapeMismatch, body)
	}
}

func TestRecords_FirstMatchWins(t *testing.T) {
	// top-level data beats a container field
	recs, err := Records(decode(t, `{"data":[{"id":"d"}],"items":[{"id":"i"}]}`))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "d", recs[0]["id"])
}

func TestRecord(t *testing.T) {
	rec, err := Record(decode(t, `{"success":true,"data":{"id":"a","name":"Barn"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Barn", rec["name"])

	rec, err = Record(decode(t, `{"id":"bare"}`))
	require.NoError(t, err)
	assert.Equal(t, "bare", rec["id"])

	_, err = Record(decode(t, `{"success":true,"data":[]}`))
	assert.ErrorIs(t, err, models.ErrShapeMismatch)

	_, err = Record(decode(t, `[1,2]`))
	assert.ErrorIs(t, err, models.ErrShapeMismatch)
}

func TestPagination(t *testing.T) {
	p, ok := Pagination(decode(t, `{"data":{"data":[],"pagination":{"page":2,"limit":10,"total":35,"totalPages":4,"hasNext":true,"hasPrev":true}}}`))
	require.True(t, ok)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, int64(35), p.Total)
	assert.True(t, p.HasNext)

	_, ok = Pagination(decode(t, `[]`))
	assert.False(t, ok)
}

func TestDecodeRecords(t *testing.T) {
	recs, err := Records(decode(t, `{"data":[
		{"id":"a","status":"PENDING","attendeeCount":12,"startDate":"2024-01-01T00:00:00Z","endDate":"2024-01-03T12:00:00Z"},
		{"id":"b","attendeeCount":"many"}
	]}`))
	require.NoError(t, err)

	bookings, err := DecodeRecords[models.Booking](recs)
	assert.ErrorIs(t, err, models.ErrShapeMismatch)
	require.Len(t, bookings, 1)
	assert.Equal(t, "a", bookings[0].ID)
	assert.Equal(t, 12, bookings[0].AttendeeCount)
	assert.Equal(t, models.StatusPending, bookings[0].Status)
	assert.True(t, bookings[0].EndDate.Equal(time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)))
}
