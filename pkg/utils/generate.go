package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderID returns a human readable booking reference.
// Format: RENT-YYYYMMDD-XXXXXXXX
func GenerateOrderID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("RENT-%s-%s", time.Now().Format("20060102"), suffix)
}
