package quire

import (
	"context"
	"fmt"
)

type MockSheetsClient struct {
	ReadFunc       func(ctx context.Context, range_ string) ([][]interface{}, error)
	WriteFunc      func(ctx context.Context, range_ string, values [][]interface{}) error
	AppendFunc     func(ctx context.Context, range_ string, values [][]interface{}) (string, error)
	BatchWriteFunc func(ctx context.Context, data []ValueRange) error
	QueryFunc      func(ctx context.Context, sheet, query string) (string, error)

	ReadCalls       []MockCall
	WriteCalls      []MockCall
	AppendCalls     []MockCall
	BatchWriteCalls [][]ValueRange
	QueryCalls      []QueryCall
}

type MockCall struct {
	Range_ string
	Values [][]interface{}
}

type QueryCall struct {
	Sheet string
	Query string
}

func (m *MockSheetsClient) Read(ctx context.Context, range_ string) ([][]interface{}, error) {
	m.ReadCalls = append(m.ReadCalls, MockCall{Range_: range_})
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, range_)
	}
	return nil, fmt.Errorf("Read not implemented")
}

func (m *MockSheetsClient) Write(ctx context.Context, range_ string, values [][]interface{}) error {
	m.WriteCalls = append(m.WriteCalls, MockCall{Range_: range_, Values: values})
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, range_, values)
	}
	return fmt.Errorf("Write not implemented")
}

func (m *MockSheetsClient) Append(ctx context.Context, range_ string, values [][]interface{}) (string, error) {
	m.AppendCalls = append(m.AppendCalls, MockCall{Range_: range_, Values: values})
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, range_, values)
	}
	return "", fmt.Errorf("Append not implemented")
}

func (m *MockSheetsClient) BatchWrite(ctx context.Context, data []ValueRange) error {
	m.BatchWriteCalls = append(m.BatchWriteCalls, data)
	if m.BatchWriteFunc != nil {
		return m.BatchWriteFunc(ctx, data)
	}
	return fmt.Errorf("BatchWrite not implemented")
}

func (m *MockSheetsClient) Query(ctx context.Context, sheet, query string) (string, error) {
	m.QueryCalls = append(m.QueryCalls, QueryCall{Sheet: sheet, Query: query})
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sheet, query)
	}
	return "", fmt.Errorf("Query not implemented")
}

func (m *MockSheetsClient) Reset() {
	m.ReadCalls = nil
	m.WriteCalls = nil
	m.AppendCalls = nil
	m.BatchWriteCalls = nil
	m.QueryCalls = nil
}
