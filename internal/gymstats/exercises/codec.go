package exercises

import (
	"bytes"
	"encoding/json"
	"fmt"
)

func MarshalCatalog(c Catalog) ([]byte, error) {
	if c == nil {
		c = Catalog{}
	}
	return json.Marshal(c)
}

func UnmarshalCatalog(blob []byte) (Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(blob, &c); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func MarshalLog(l Log) ([]byte, error) {
	if l == nil {
		l = Log{}
	}
	return json.Marshal(l)
}

// DecodeLog decodes a persisted log record by record, keeping the stored order.
// Only presence and type are checked: a record that cannot be read as a LoggedSet
// is returned as unreadable instead of failing the whole log. A blob that is not
// a JSON list at all is returned as a single unreadable record.
func DecodeLog(blob []byte) (Log, [][]byte) {
	l := Log{}
	if len(bytes.TrimSpace(blob)) == 0 {
		return l, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(blob, &records); err != nil {
		return l, [][]byte{blob}
	}

	var unreadable [][]byte
	for _, record := range records {
		var set LoggedSet
		if err := json.Unmarshal(record, &set); err != nil || bytes.Equal(bytes.TrimSpace(record), []byte("null")) {
			unreadable = append(unreadable, record)
			continue
		}
		l = append(l, set)
	}
	return l, unreadable
}

// UnmarshalLog is the strict variant of DecodeLog: any unreadable record fails the decode.
func UnmarshalLog(blob []byte) (Log, error) {
	l, unreadable := DecodeLog(blob)
	if len(unreadable) > 0 {
		return nil, fmt.Errorf("unmarshal workout log: %d unreadable records", len(unreadable))
	}
	return l, nil
}

// QuarantinedRecord keeps a persisted workout record that could not be read,
// so it is never lost when the log is written back.
type QuarantinedRecord struct {
	Raw           string `json:"raw"`
	QuarantinedAt int64  `json:"quarantinedAt"`
}

func MarshalQuarantine(records []QuarantinedRecord) ([]byte, error) {
	if records == nil {
		records = []QuarantinedRecord{}
	}
	return json.Marshal(records)
}

func UnmarshalQuarantine(blob []byte) ([]QuarantinedRecord, error) {
	var records []QuarantinedRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, fmt.Errorf("unmarshal quarantine: %w", err)
	}
	return records, nil
}
