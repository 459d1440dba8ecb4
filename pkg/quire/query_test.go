package quire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersCSV = `"createdAt","updatedAt","deletedAt","email","name","age","birthDate","isMarried"
"2025-01-01 00:00:00.000","","","h@h.com","Helal","47","1990-05-17 00:00:00.000","TRUE"
"2025-01-02 00:00:00.000","2025-01-03 00:00:00.000","","a@b.c","Ann, Jr.","31","","FALSE"
`

func TestModel_FindMany(t *testing.T) {
	ctx := context.Background()
	mock := &MockSheetsClient{
		QueryFunc: func(ctx context.Context, sheet, query string) (string, error) {
			return usersCSV, nil
		},
	}
	m := newTestModel(t, mock, userFields())

	records, err := m.FindMany(ctx, Query{Filter: Where("age").Gt(30)})
	require.NoError(t, err)

	require.Len(t, mock.QueryCalls, 1)
	assert.Equal(t, "", mock.QueryCalls[0].Sheet)
	assert.Equal(t, "select *\nwhere (F > 30) and (C is null)\n", mock.QueryCalls[0].Query)

	require.Len(t, records, 2)
	assert.Equal(t, "", records[0].ID)
	assert.Equal(t, "Helal", records[0].Get("name"))
	assert.Equal(t, 47.0, records[0].Get("age"))
	assert.Equal(t, true, records[0].Get("isMarried"))
	assert.Equal(t, time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC), records[0].Get("birthDate"))
	assert.Nil(t, records[0].Get(FieldUpdatedAt))

	assert.Equal(t, "Ann, Jr.", records[1].Get("name"))
	assert.Equal(t, false, records[1].Get("isMarried"))
	assert.Nil(t, records[1].Get("birthDate"))
	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), records[1].Get(FieldUpdatedAt))
}

func TestModel_FindMany_DefaultSoftDeleteFilter(t *testing.T) {
	tests := []struct {
		name     string
		query    Query
		expected string
	}{
		{
			name:     "no filter",
			query:    Query{},
			expected: "select *\nwhere C is null\n",
		},
		{
			name:     "or filter",
			query:    Query{Filter: Or{Where("age").Lt(18), Where("age").Gt(65)}},
			expected: "select *\nwhere ((F < 18) or (F > 65)) and (C is null)\n",
		},
		{
			name:     "caller filters on deletedAt",
			query:    Query{Filter: Where(FieldDeletedAt).IsNotNull()},
			expected: "select *\nwhere C is not null\n",
		},
		{
			name:     "deletedAt condition without operators",
			query:    Query{Filter: Where(FieldDeletedAt)},
			expected: "select *\nwhere C is null\n",
		},
		{
			name:     "deletedAt condition without operators next to a filter",
			query:    Query{Filter: And{Where("age").Gt(1), Where(FieldDeletedAt)}},
			expected: "select *\nwhere (F > 1) and (C is null)\n",
		},
		{
			name:     "caller filters on deletedAt nested",
			query:    Query{Filter: And{Where("age").Gt(1), Or{Where(FieldDeletedAt).IsNull(), Where("isMarried").Eq(true)}}},
			expected: "select *\nwhere (F > 1) and ((C is null) or (H = true))\n",
		},
		{
			name:     "include deleted",
			query:    Query{IncludeDeleted: true, Limit: 5},
			expected: "select *\nlimit 5\n",
		},
		{
			name:     "selection limit offset",
			query:    Query{Select: []string{"age", "email"}, Limit: 12, Offset: 20},
			expected: "select F, D\nwhere C is null\nlimit 12\noffset 20\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockSheetsClient{
				QueryFunc: func(ctx context.Context, sheet, query string) (string, error) {
					return "", nil
				},
			}
			m := newTestModel(t, mock, userFields())

			_, err := m.FindMany(context.Background(), tt.query)
			require.NoError(t, err)
			require.Len(t, mock.QueryCalls, 1)
			assert.Equal(t, tt.expected, mock.QueryCalls[0].Query)
		})
	}
}

func TestModel_FindMany_Selections(t *testing.T) {
	mock := &MockSheetsClient{
		QueryFunc: func(ctx context.Context, sheet, query string) (string, error) {
			return "\"age\",\"email\"\n\"31\",\"a@b.c\"\n", nil
		},
	}
	m := newTestModel(t, mock, userFields())

	records, err := m.FindMany(context.Background(), Query{Select: []string{"age", "email"}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, map[string]any{"age": 31.0, "email": "a@b.c"}, records[0].Values)
}

func TestModel_FindMany_OmitsDeletedFields(t *testing.T) {
	fields := []Field{
		{Name: "old", Kind: KindString, Column: "D", Deleted: true},
		{Name: "name", Kind: KindString, Column: "E"},
	}
	mock := &MockSheetsClient{
		QueryFunc: func(ctx context.Context, sheet, query string) (string, error) {
			return "a,b,c,d,e\n2025-01-01 00:00:00.000,,,stale,Ann\n", nil
		},
	}
	m := newTestModel(t, mock, fields)

	records, err := m.FindMany(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	_, present := records[0].Values["old"]
	assert.False(t, present)
	assert.Equal(t, "Ann", records[0].Get("name"))
}

func TestModel_FindMany_Errors(t *testing.T) {
	t.Run("remote error propagates", func(t *testing.T) {
		mock := &MockSheetsClient{
			QueryFunc: func(ctx context.Context, sheet, query string) (string, error) {
				return "", &RemoteError{Op: "query", StatusCode: 500, Err: errors.New("boom")}
			},
		}
		m := newTestModel(t, mock, userFields())

		records, err := m.FindMany(context.Background(), Query{})
		assert.Nil(t, records)
		assert.ErrorIs(t, err, ErrRemote)

		var remoteErr *RemoteError
		require.ErrorAs(t, err, &remoteErr)
		assert.Equal(t, 500, remoteErr.StatusCode)
	})

	t.Run("unknown field is not sent", func(t *testing.T) {
		mock := &MockSheetsClient{}
		m := newTestModel(t, mock, userFields())

		_, err := m.FindMany(context.Background(), Query{Filter: Where("salary").Gt(1)})
		assert.ErrorIs(t, err, ErrUnknownField)
		assert.Empty(t, mock.QueryCalls)
	})

	t.Run("unknown selection is not sent", func(t *testing.T) {
		mock := &MockSheetsClient{}
		m := newTestModel(t, mock, userFields())

		_, err := m.FindMany(context.Background(), Query{Select: []string{"salary"}})
		assert.ErrorIs(t, err, ErrUnknownField)
		assert.Empty(t, mock.QueryCalls)
	})

	t.Run("malformed csv", func(t *testing.T) {
		mock := &MockSheetsClient{
			QueryFunc: func(ctx context.Context, sheet, query string) (string, error) {
				return "a,b\n\"unterminated,c\n", nil
			},
		}
		m := newTestModel(t, mock, userFields())

		_, err := m.FindMany(context.Background(), Query{})
		assert.Error(t, err)
	})
}

func TestDecodeCSV_HeaderOnly(t *testing.T) {
	s := mustSchema(t, userFields()...)

	records, err := decodeCSV(`"createdAt","updatedAt"`+"\n", s.Fields())
	require.NoError(t, err)
	assert.Empty(t, records)
}
