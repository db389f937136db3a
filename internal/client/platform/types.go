// Package platform provides a client for the monitored platform's REST API.
package platform

import (
	"time"
)

// tokenResponse is the OAuth2 token endpoint response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ObjectQuery describes an object-manager query.
type ObjectQuery struct {
	ArtifactTypeID int      // Object type to query
	Fields         []string // Field names to return
	Condition      string   // Optional filter condition
	SortField      string   // Optional sort field (descending)
	Length         int      // Page size; 0 uses the default
}

// objectQueryRequest is the wire shape of an object-manager query.
type objectQueryRequest struct {
	Request objectQueryInner `json:"request"`
	Start   int              `json:"start"`
	Length  int              `json:"length"`
}

type objectQueryInner struct {
	ObjectType objectType   `json:"objectType"`
	Fields     []fieldRef   `json:"fields"`
	Condition  string       `json:"condition"`
	Sorts      []fieldSort  `json:"sorts,omitempty"`
	QueryHint  string       `json:"queryHint"`
}

type objectType struct {
	ArtifactTypeID int `json:"ArtifactTypeID"`
}

type fieldRef struct {
	Name string `json:"Name"`
}

type fieldSort struct {
	FieldIdentifier fieldRef `json:"FieldIdentifier"`
	Direction       string   `json:"Direction"`
}

// objectQueryResponse is the wire shape of an object-manager result.
type objectQueryResponse struct {
	Objects    []rawObject `json:"Objects"`
	TotalCount int         `json:"TotalCount"`
}

type rawObject struct {
	ArtifactID  int             `json:"ArtifactID"`
	FieldValues []rawFieldValue `json:"FieldValues"`
}

type rawFieldValue struct {
	Field rawFieldName `json:"Field"`
	Value interface{}  `json:"Value"`
}

type rawFieldName struct {
	Name string `json:"Name"`
}

// Agent is one environment agent as reported by the agents API.
type Agent struct {
	ArtifactID   int    `json:"ArtifactID"`
	Name         string `json:"Name"`
	Enabled      bool   `json:"Enabled"`
	Status       string `json:"Status"`
	LastActivity string `json:"LastActivity"`
}

// Record is one returned object with its requested field values decoded.
type Record struct {
	ArtifactID int
	Fields     map[string]interface{}
}

// toRecord flattens a raw object into a Record, unwrapping choice fields
// ({"Name": ...}) and object references ({"ArtifactID": ..., "Name": ...})
// into their display names.
func (o rawObject) toRecord() Record {
	fields := make(map[string]interface{}, len(o.FieldValues))
	for _, fv := range o.FieldValues {
		fields[fv.Field.Name] = unwrapValue(fv.Value)
	}
	return Record{ArtifactID: o.ArtifactID, Fields: fields}
}

// unwrapValue normalizes the polymorphic field value shapes the API returns.
func unwrapValue(value interface{}) interface{} {
	m, ok := value.(map[string]interface{})
	if !ok {
		return value
	}
	if name, ok := m["Name"].(string); ok {
		return name
	}
	if id, ok := m["ArtifactID"]; ok {
		return id
	}
	return value
}

// String returns the named field as a string, or "" when absent or not text.
func (r Record) String(name string) string {
	if s, ok := r.Fields[name].(string); ok {
		return s
	}
	return ""
}

// Float returns the named field as a float64. Missing or non-numeric fields
// read as zero.
func (r Record) Float(name string) float64 {
	switch v := r.Fields[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Bool returns the named field as a bool, false when absent.
func (r Record) Bool(name string) bool {
	if b, ok := r.Fields[name].(bool); ok {
		return b
	}
	return false
}

// Time parses the named field as a timestamp. Unparsable or missing values
// yield the zero time: callers treat that as "no timestamp" and skip any
// elapsed-time rule rather than erroring.
func (r Record) Time(name string) time.Time {
	s := r.String(name)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
