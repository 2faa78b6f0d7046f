package api

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
)

const dateLayout = "2006-01-02"

// ErrInvalidParam is returned for malformed query parameters.
var ErrInvalidParam = errors.New("invalid parameter")

// intervalPattern accepts calendar units and fixed amounts such as 12h.
var intervalPattern = regexp.MustCompile(`^([1-9][0-9]*[smhd]|year|quarter|month|week|day|hour|minute|second)$`)

// validDocTypes are the document types a data set stores.
var validDocTypes = map[string]bool{
	domain.DocTypeEmails:       true,
	domain.DocTypeAttachments:  true,
	domain.DocTypeEmailAddress: true,
}

// parseDate reads an optional YYYY-MM-DD parameter.
func parseDate(c *gin.Context, name string) (string, error) {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		return "", nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return "", fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidParam, name)
	}
	return value, nil
}

// parseBounds reads start and end. Either side may be missing.
func parseBounds(c *gin.Context) (domain.DateBounds, error) {
	start, err := parseDate(c, "start")
	if err != nil {
		return domain.DateBounds{}, err
	}
	end, err := parseDate(c, "end")
	if err != nil {
		return domain.DateBounds{}, err
	}
	if start != "" && end != "" && start > end {
		return domain.DateBounds{}, fmt.Errorf("%w: start is after end", ErrInvalidParam)
	}
	return domain.DateBounds{Start: start, End: end}, nil
}

// parseInterval returns the interval parameter; empty selects the default.
func parseInterval(c *gin.Context) (string, error) {
	interval := strings.TrimSpace(c.Query("interval"))
	if interval != "" && !intervalPattern.MatchString(interval) {
		return "", fmt.Errorf("%w: interval %q", ErrInvalidParam, interval)
	}
	return interval, nil
}

// parseDocType returns the type parameter, defaulting to emails.
func parseDocType(c *gin.Context) (string, error) {
	docType := c.DefaultQuery("type", domain.DocTypeEmails)
	if !validDocTypes[docType] {
		return "", fmt.Errorf("%w: type %q", ErrInvalidParam, docType)
	}
	return docType, nil
}

func parseSize(c *gin.Context) (int, error) {
	raw := c.Query("size")
	if raw == "" {
		return 0, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("%w: size must be a non-negative integer", ErrInvalidParam)
	}
	return size, nil
}

// parseAddrs splits a comma separated addr parameter.
func parseAddrs(c *gin.Context) []string {
	var addrs []string
	for _, a := range strings.Split(c.Query("addr"), ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}
