package sheets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"google.golang.org/api/googleapi"

	"cafebook/config"
	"cafebook/shared/failure"
)

// credentialPaths are tried in order after the configured inline JSON and path.
var credentialPaths = []string{
	"/etc/secrets/credentials.json",
	"./credentials.json",
}

// loadCredentials returns the service account JSON and where it came from.
func loadCredentials(cfg *config.Config) ([]byte, string, error) {
	if inline := strings.TrimSpace(cfg.Store.Sheets.CredentialsJSON); inline != "" {
		return []byte(inline), "inline", nil
	}

	paths := credentialPaths
	if explicit := cfg.Store.Sheets.CredentialsPath; explicit != "" {
		paths = append([]string{explicit}, paths...)
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, path, nil
		}

		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("failed to read credentials %s: %w", path, err)
		}
	}

	return nil, "", fmt.Errorf("no google credentials found, tried inline json and %s", strings.Join(paths, ", "))
}

// classify maps an API or transport error onto the store failure kinds.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if failure.IsStoreError(err) {
		return err
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return failure.StoreUnavailable(err.Error())
		}

		return failure.StoreRejected(err.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return failure.StoreUnavailable(err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return failure.StoreUnavailable(err.Error())
	}

	return failure.StoreRejected(err.Error())
}

// a1 builds a sheet-qualified A1 range. The title is always quoted.
func a1(sheet, rng string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + rng
}

// cellRef addresses one cell of a data row, e.g. data row 1 column 8 is I2.
func cellRef(index, column int) string {
	return string(rune('A'+column)) + strconv.Itoa(index+1)
}

// parseUpdatedRow reads the first row number from a range like "sheet1!A5:I5".
func parseUpdatedRow(updatedRange string) (int, bool) {
	ref := updatedRange
	if idx := strings.LastIndexByte(ref, '!'); idx >= 0 {
		ref = ref[idx+1:]
	}

	if idx := strings.IndexByte(ref, ':'); idx >= 0 {
		ref = ref[:idx]
	}

	digits := strings.TrimLeftFunc(ref, func(r rune) bool {
		return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || r == '$'
	})

	row, err := strconv.Atoi(digits)
	if err != nil || row < 1 {
		return 0, false
	}

	return row, true
}

func toCells(values []any) []string {
	cells := make([]string, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}

		cells[i] = fmt.Sprint(v)
	}

	return cells
}

func toValues(cells []string) []any {
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
	}

	return values
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
