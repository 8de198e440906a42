package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

const extractHeader = "USERID,LASTNAME,FIRSTNAME,ROLETYPID,LASTLOGONDATE,LASTLOGONTIME,EXPIRATIONSTARTDATE,EXPIRATIONENDDATE\n"

func writeExtract(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadExtractMissingColumn(t *testing.T) {
	header := "USERID,LASTNAME,FIRSTNAME,LASTLOGONDATE,LASTLOGONTIME,EXPIRATIONSTARTDATE,EXPIRATIONENDDATE\n"
	path := writeExtract(t, header+"U1,Kim,Min,2024-05-03,14:31:07,20240101,99991230\n")

	_, err := loadExtract(path)
	require.Error(t, err)

	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "ROLETYPID", missing.Column)
}

func TestLoadExtractUnreadableFile(t *testing.T) {
	_, err := loadExtract(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)

	var missing *MissingColumnError
	assert.False(t, errors.As(err, &missing), "unreadable file must not look like a missing column")
}

func TestLoadExtractDeduplicatesByTrimmedID(t *testing.T) {
	path := writeExtract(t, extractHeader+
		"U1,Kim,Min,GB Advanced Use,2024-05-03,14:31:07,20240101,99991230\n"+
		" U1 ,Kim,Min,GC Core Use,2024-05-04,09:00:00,20240101,99991230\n"+
		"U2,Lee,Soo,GC Core Use,2024-05-03,10:00:00,20240101,99991230\n")

	extract, err := loadExtract(path)
	require.NoError(t, err)

	require.Len(t, extract.Users, 2)
	assert.Equal(t, 1, extract.DuplicateRows)
	assert.Equal(t, 3, extract.RowsRead)

	// First occurrence wins, including its role.
	assert.Equal(t, "U1", extract.Users[0].UserID)
	assert.Equal(t, "GB Advanced Use", extract.Users[0].RoleType)
}

func TestLoadExtractMalformedRowDegrades(t *testing.T) {
	path := writeExtract(t, extractHeader+
		"U1,Kim,Min,GB Advanced Use,yesterday,noon,2024,notadate\n"+
		",,,GC Core Use,2024-05-03,10:00:00,,\n")

	extract, err := loadExtract(path)
	require.NoError(t, err)

	// The malformed row is retained with unknown field values; the row with
	// no user id is dropped and counted.
	require.Len(t, extract.Users, 1)
	user := extract.Users[0]
	assert.True(t, user.LastLogon.IsZero())
	assert.True(t, user.ExpirationStart.IsZero())
	assert.True(t, user.ExpirationEnd.IsZero())
	assert.Equal(t, 1, extract.InvalidRows)
	assert.Equal(t, 3, extract.BadDateValues)
}

func TestLoadExtractParsesDerivedFields(t *testing.T) {
	path := writeExtract(t, extractHeader+
		"U1,Kim,Hwi-young,GB Advanced Use,2024-05-03,오후 02:31:07,202301,99991230\n")

	extract, err := loadExtract(path)
	require.NoError(t, err)
	require.Len(t, extract.Users, 1)

	user := extract.Users[0]
	assert.Equal(t, time.Date(2024, 5, 3, 14, 31, 7, 0, time.UTC), user.LastLogon)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), user.ExpirationStart)
	assert.Equal(t, "99991230", user.ExpirationEndRaw)
	assert.Equal(t, "KimHwi-young", user.DisplayName())
	assert.Equal(t, 0, extract.BadDateValues)
}

func TestLoadExtractEUCKR(t *testing.T) {
	content := extractHeader +
		"U1,김,휘영,GB Advanced Use,2024-05-03,오후 02:31:07,20230101,99991230\n"

	encoded, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(content))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "users-euckr.csv")
	require.NoError(t, os.WriteFile(path, encoded, 0644))

	extract, err := loadExtract(path)
	require.NoError(t, err)
	assert.Equal(t, "euc-kr", extract.Encoding)

	require.Len(t, extract.Users, 1)
	assert.Equal(t, "김휘영", extract.Users[0].DisplayName())
	assert.Equal(t, 14, extract.Users[0].LastLogon.Hour())
}

func TestLoadExtractUTF8BOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte(extractHeader+
		"U1,Kim,Min,GC Core Use,2024-05-03,10:00:00,20230101,20261103\n")...)

	path := filepath.Join(t.TempDir(), "users-bom.csv")
	require.NoError(t, os.WriteFile(path, content, 0644))

	extract, err := loadExtract(path)
	require.NoError(t, err)
	assert.Equal(t, "unicode-bom", extract.Encoding)

	require.Len(t, extract.Users, 1)
	assert.Equal(t, "U1", extract.Users[0].UserID)
}
