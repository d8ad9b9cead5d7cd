package meterface

import (
	"fmt"
	"testing"

	diff "github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringDiff(expected, actual string) string {
	return fmt.Sprint(diff.ToUnified(`expected`, `actual`, expected, myers.ComputeEdits(``, expected, actual)))
}

func TestSerializeData(t *testing.T) {
	for _, tc := range []struct {
		Name string
		Data Data
		Want string
	}{
		{
			Name: `minimal`,
			Data: Data{SessionUUID: `aB3xQ9pL`, Position: 1, Category: `orders`},
			Want: `{sessionUuid:aB3xQ9pL, position:1, category:orders}`,
		},
		{
			Name: `full`,
			Data: Data{
				SessionUUID:        `aB3xQ9pL`,
				Position:           17,
				Category:           `orders.import`,
				Operation:          `validate`,
				Parent:             `orders.import#3`,
				Description:        `validating rows`,
				CreateTime:         1000,
				StartTime:          1200,
				StopTime:           1800,
				TimeLimit:          50,
				CurrentIteration:   42,
				ExpectedIterations: 100,
				OkPath:             `fast`,
				Context: []ContextEntry{
					{Key: `userId`, Value: `u1`},
					{Key: `region`, Value: `eu`},
				},
			},
			Want: `{sessionUuid:aB3xQ9pL, position:17, category:orders.import, operation:validate, ` +
				`parent:orders.import#3, description:"validating rows", createTime:1000, startTime:1200, ` +
				`stopTime:1800, timeLimit:50, currentIteration:42, expectedIterations:100, okPath:fast, ` +
				`context:{userId:u1,region:eu}}`,
		},
		{
			Name: `quoting and null context`,
			Data: Data{
				SessionUUID: `s`,
				Position:    2,
				Category:    `c`,
				FailPath:    `os.PathError`,
				FailMessage: `open "x": no such file`,
				Context: []ContextEntry{
					{Key: `note`, Value: `a, b`},
					{Key: `trace`, Null: true},
				},
			},
			Want: `{sessionUuid:s, position:2, category:c, failPath:os.PathError, ` +
				`failMessage:"open \"x\": no such file", context:{note:"a, b",trace:<null>}}`,
		},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			got := SerializeData(&tc.Data)
			if got != tc.Want {
				t.Error(stringDiff(tc.Want, got))
			}
		})
	}
}

// parse(serialize(R)) == R, for records built from the public fields
func TestParseData_roundTrip(t *testing.T) {
	for _, tc := range []Data{
		{SessionUUID: `aB3xQ9pL`, Position: 1, Category: `orders`},
		{
			SessionUUID:        `aB3xQ9pL`,
			Position:           17,
			Category:           `orders.import`,
			Operation:          `validate`,
			Parent:             `orders.import#3`,
			Description:        `validating "important" rows`,
			CreateTime:         1000,
			StartTime:          1200,
			StopTime:           1800,
			TimeLimit:          50,
			CurrentIteration:   42,
			ExpectedIterations: 100,
			RejectPath:         `validation`,
			Context: []ContextEntry{
				{Key: `userId`, Value: `u1`},
				{Key: `k v`, Value: `with space`},
				{Key: `n`, Null: true},
			},
		},
		{SessionUUID: `s`, Position: 9, Category: `c`, FailPath: `x\y`, FailMessage: `broke: {badly}`},
	} {
		t.Run(``, func(t *testing.T) {
			s := SerializeData(&tc)
			got, err := ParseData(s)
			require.NoError(t, err, s)
			assert.Equal(t, &tc, got, s)
		})
	}
}

func TestParseData_tolerant(t *testing.T) {
	d, err := ParseData(" \t{ sessionUuid : aB3xQ9pL ,\n\tposition: 17,  category:orders,\n" +
		"  mystery:\"ignore me\", context: { userId : u1 , region : \"eu\" } }\n")
	require.NoError(t, err)
	assert.Equal(t, `aB3xQ9pL`, d.SessionUUID)
	assert.EqualValues(t, 17, d.Position)
	assert.Equal(t, `orders`, d.Category)
	assert.Equal(t, []ContextEntry{{Key: `userId`, Value: `u1`}, {Key: `region`, Value: `eu`}}, d.Context)
}

func TestParseData_errors(t *testing.T) {
	for _, tc := range []struct {
		Name string
		In   string
		Err  error
	}{
		{`empty`, ``, ErrMalformedRecord},
		{`not a record`, `hello`, ErrMalformedRecord},
		{`missing session`, `{position:1, category:c}`, ErrMissingSessionUUID},
		{`missing position`, `{sessionUuid:s, category:c}`, ErrMissingPosition},
		{`bad position`, `{sessionUuid:s, position:x}`, ErrMalformedRecord},
		{`bad time`, `{sessionUuid:s, position:1, startTime:soon}`, ErrMalformedRecord},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := ParseData(tc.In)
			assert.ErrorIs(t, err, tc.Err)
		})
	}
}
