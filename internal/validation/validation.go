package validation

import (
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const maxUserIDLength = 255

// NormalizeUserID trims surrounding whitespace; user ids are otherwise
// opaque strings owned by the caller's identity system.
func NormalizeUserID(userID string) string {
	return strings.TrimSpace(userID)
}

func ValidateUserID(userID string) bool {
	userID = NormalizeUserID(userID)
	return userID != "" && len(userID) <= maxUserIDLength
}

// ValidateGroupID checks the path parameter is a well-formed UUID before
// it reaches any store.
func ValidateGroupID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func DefaultExpiryMinutes() int {
	minStr := os.Getenv("DEFAULT_EXPIRY_MINUTES")
	if minStr == "" {
		return 30
	}
	min, err := strconv.Atoi(minStr)
	if err != nil || min < 1 {
		return 30
	}
	return min
}
