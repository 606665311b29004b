// Package timezone pins the application to a single fixed UTC offset.
//
// Every reservation date and time is interpreted in this offset. There is no
// daylight-saving handling: the offset is configured once via APP_UTC_OFFSET
// (for example "+09:00" or "-03:30") and loaded when the package is imported.
//
//	now := timezone.Now()
//	t, err := timezone.Parse("2006/01/02 15:04", "2025/11/01 13:00")
package timezone
