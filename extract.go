package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// UserRecord is one deduplicated row of the source extract with its derived
// timestamps. Zero times mean the raw value was missing or unparsable.
type UserRecord struct {
	UserID             string
	LastName           string
	FirstName          string
	RoleType           string
	LastLogon          time.Time
	ExpirationStart    time.Time
	ExpirationEnd      time.Time
	ExpirationEndRaw   string
	ExpirationStartRaw string
}

// DisplayName is last-name-first with no separator, falling back to the id
// when both name parts are empty.
func (r UserRecord) DisplayName() string {
	name := r.LastName + r.FirstName
	if name == "" {
		return r.UserID
	}
	return name
}

// Extract is the loaded snapshot: distinct users plus row-level accounting.
type Extract struct {
	Users         []UserRecord
	RowsRead      int
	DuplicateRows int
	InvalidRows   int
	BadDateValues int
	Encoding      string
}

// MissingColumnError reports a required column absent from the extract header.
// It is structural: the caller decides whether to fall back to placeholder
// figures, the loader never substitutes numbers itself.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("extract is missing required column %s", e.Column)
}

var requiredColumns = []string{
	"USERID",
	"LASTNAME",
	"FIRSTNAME",
	"ROLETYPID",
	"LASTLOGONDATE",
	"LASTLOGONTIME",
	"EXPIRATIONSTARTDATE",
	"EXPIRATIONENDDATE",
}

// loadExtract reads the CSV extract, decodes it to UTF-8, maps the required
// columns, and builds the distinct-user snapshot. Per-row problems degrade to
// unknown field values; only an unreadable file or a missing column is an
// error.
func loadExtract(path string) (*Extract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read extract: %w", err)
	}

	decoded, encName, err := decodeExtract(data)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("extract has no header row")
		}
		return nil, fmt.Errorf("unable to read header: %w", err)
	}

	colMap := normalizeHeaders(headers)
	columns := make(map[string]int, len(requiredColumns))
	for _, name := range requiredColumns {
		idx, ok := findColumn(colMap, name)
		if !ok {
			return nil, &MissingColumnError{Column: name}
		}
		columns[name] = idx
	}

	extract := &Extract{Encoding: encName}
	seen := map[string]bool{}

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("unable to read extract row: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		extract.RowsRead++

		userID := getValue(record, columns["USERID"])
		if userID == "" {
			extract.InvalidRows++
			continue
		}
		if seen[userID] {
			extract.DuplicateRows++
			continue
		}
		seen[userID] = true

		logonDate := getValue(record, columns["LASTLOGONDATE"])
		logonTime := getValue(record, columns["LASTLOGONTIME"])
		startRaw := getValue(record, columns["EXPIRATIONSTARTDATE"])
		endRaw := getValue(record, columns["EXPIRATIONENDDATE"])

		user := UserRecord{
			UserID:             userID,
			LastName:           getValue(record, columns["LASTNAME"]),
			FirstName:          getValue(record, columns["FIRSTNAME"]),
			RoleType:           getValue(record, columns["ROLETYPID"]),
			LastLogon:          parseLogonDatetime(logonDate, logonTime),
			ExpirationStart:    parseCalendarDate(startRaw),
			ExpirationEnd:      parseCalendarDate(endRaw),
			ExpirationStartRaw: startRaw,
			ExpirationEndRaw:   endRaw,
		}

		if logonDate != "" && user.LastLogon.IsZero() {
			extract.BadDateValues++
		}
		if startRaw != "" && user.ExpirationStart.IsZero() {
			extract.BadDateValues++
		}
		if endRaw != "" && user.ExpirationEnd.IsZero() && endRaw != neverExpiresRaw {
			extract.BadDateValues++
		}

		extract.Users = append(extract.Users, user)
	}

	log.Debug().
		Str("encoding", encName).
		Int("rows", extract.RowsRead).
		Int("users", len(extract.Users)).
		Int("duplicates", extract.DuplicateRows).
		Int("bad_dates", extract.BadDateValues).
		Msg("extract loaded")

	return extract, nil
}

// decodeExtract converts the raw file bytes to UTF-8. Unicode BOMs win;
// BOM-less content that is not valid UTF-8 is assumed to be EUC-KR, the
// legacy encoding of extracts from the Korean-locale source system.
func decodeExtract(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return data, "utf-8", nil
	}

	if hasUnicodeBOM(data) {
		decoder := unicode.BOMOverride(encoding.Nop.NewDecoder())
		decoded, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return nil, "", fmt.Errorf("unable to decode extract: %w", err)
		}
		return decoded, "unicode-bom", nil
	}

	if utf8.Valid(data) {
		return data, "utf-8", nil
	}

	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return nil, "", fmt.Errorf("unable to decode extract as EUC-KR: %w", err)
	}
	return decoded, "euc-kr", nil
}

func hasUnicodeBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}

func normalizeHeaders(headers []string) map[string]int {
	result := make(map[string]int, len(headers))
	for idx, header := range headers {
		normalized := normalizeHeader(header)
		if _, exists := result[normalized]; !exists {
			result[normalized] = idx
		}
	}
	return result
}

func normalizeHeader(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, "-", "")
	return value
}

func findColumn(headers map[string]int, name string) (int, bool) {
	idx, ok := headers[normalizeHeader(name)]
	if !ok {
		return -1, false
	}
	return idx, true
}

func getValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
