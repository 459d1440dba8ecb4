package quire

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		cfg           Config
		wantErr       bool
		expectedError string
	}{
		{
			name: "missing spreadsheet id",
			cfg: Config{
				SpreadsheetID: "",
				Credentials:   []byte(`{"type":"service_account"}`),
			},
			wantErr:       true,
			expectedError: "spreadsheet ID is required",
		},
		{
			name: "missing credentials",
			cfg: Config{
				SpreadsheetID: "test-id",
				Credentials:   nil,
			},
			wantErr:       true,
			expectedError: "credentials are required",
		},
		{
			name: "empty credentials",
			cfg: Config{
				SpreadsheetID: "test-id",
				Credentials:   []byte{},
			},
			wantErr:       true,
			expectedError: "credentials are required",
		},
		{
			name: "token source",
			cfg: Config{
				SpreadsheetID: "test-id",
				TokenSource:   oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := New(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				if tt.expectedError != "" {
					assert.Equal(t, tt.expectedError, err.Error())
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, db)
			assert.Equal(t, tt.cfg.SpreadsheetID, db.spreadsheetID)
			assert.NoError(t, db.Close())
		})
	}
}

func TestNew_WithInvalidCredentials(t *testing.T) {
	cfg := Config{
		SpreadsheetID: "test-id",
		Credentials:   []byte(`invalid json`),
	}

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_QueryURL(t *testing.T) {
	db, err := New(Config{
		SpreadsheetID: "test-id",
		TokenSource:   oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}),
		QueryURL:      "http://localhost:9999/d/",
	})
	require.NoError(t, err)

	client, ok := db.client.(*sheetsClient)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:9999/d", client.queryURL)
	assert.Equal(t, "test-id", client.spreadsheetID)
}

func TestDB_Model(t *testing.T) {
	mockClient := &MockSheetsClient{}
	db := NewWithClient("test-id", mockClient, nil)
	schema := mustSchema(t, userFields()...)

	m := db.Model(schema, WithSheet("Users"))

	require.NotNil(t, m)
	assert.Equal(t, "Users", m.sheet)
	assert.Same(t, schema, m.Schema())
	assert.Same(t, db, m.db)
}

func TestDB_Close(t *testing.T) {
	db := &DB{
		spreadsheetID: "test-id",
		client:        &MockSheetsClient{},
	}

	assert.NoError(t, db.Close())
}

func TestSheetsClientInterface(t *testing.T) {
	var _ SheetsClient = (*MockSheetsClient)(nil)
	var _ SheetsClient = (*sheetsClient)(nil)
}

func TestDB_LogsQueries(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	mock := &MockSheetsClient{
		QueryFunc: func(ctx context.Context, sheet, query string) (string, error) {
			return "", nil
		},
	}
	db := NewWithClient("test-id", mock, &logger)
	m := db.Model(mustSchema(t, userFields()...))

	_, err := m.FindMany(context.Background(), Query{})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"running query"`)
	assert.Contains(t, out, `"query":"select *\nwhere C is null\n"`)
	assert.Contains(t, out, `"request_id":"`)
}

func TestMockSheetsClient_Reset(t *testing.T) {
	ctx := context.Background()
	mock := &MockSheetsClient{}

	_, _ = mock.Read(ctx, "test")
	_, _ = mock.Append(ctx, "test", nil)
	_ = mock.Write(ctx, "test", nil)
	_ = mock.BatchWrite(ctx, nil)
	_, _ = mock.Query(ctx, "", "select *")

	mock.Reset()

	assert.Empty(t, mock.ReadCalls)
	assert.Empty(t, mock.AppendCalls)
	assert.Empty(t, mock.WriteCalls)
	assert.Empty(t, mock.BatchWriteCalls)
	assert.Empty(t, mock.QueryCalls)
}
