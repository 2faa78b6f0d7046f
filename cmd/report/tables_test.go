//nolint:testpackage // Testing unexported renderers requires same package access
package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/north-cloud/email-analytics/internal/domain"
)

func TestRenderBounds(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderBounds(&buf, "sample", domain.DocTypeEmails, domain.DateBounds{Start: "2000-01-01", End: "2001-01-01"})

	out := buf.String()
	assert.Contains(t, out, "sample")
	assert.Contains(t, out, "2000-01-01")
	assert.Contains(t, out, "2001-01-01")
}

func TestRenderActivity_Totals(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderActivity(&buf, domain.EmailActivity{
		DataSetID: "sample",
		Activities: []domain.ActivityRecord{
			{IntervalStartDatetime: "2000-06-05", IntervalInboundCount: 2, IntervalOutboundCount: 4},
			{IntervalStartDatetime: "2000-06-12", IntervalInboundCount: 3, IntervalOutboundCount: 1},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "all accounts")
	assert.Contains(t, out, "2000-06-12")

	var footer string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(strings.ToUpper(line), "TOTAL") {
			footer = line
		}
	}
	assert.Regexp(t, `5\s*│\s*5`, footer)
}

func TestRenderAttachments(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderAttachments(&buf, domain.AttachmentActivity{
		DataSetID: "sample",
		AccountID: "jeb@jeb.org",
		Activities: []domain.AttachmentRecord{
			{IntervalStartDatetime: "2000-06-05", IntervalAttachCount: 7},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "jeb@jeb.org")
	assert.Contains(t, out, "7")
}

func TestRenderEntities(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderEntities(&buf, "sample", []domain.EntityCount{
		{Key: "tallahassee", DocCount: 9, Type: domain.EntityLocation},
		{Key: "jeb bush", DocCount: 3, Type: domain.EntityPerson},
	})

	out := buf.String()
	assert.Less(t, strings.Index(out, "tallahassee"), strings.Index(out, "jeb bush"))
	assert.Contains(t, out, domain.EntityLocation)
}

func TestRenderEntities_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderEntities(&buf, "sample", nil)

	assert.Contains(t, buf.String(), "no entities found")
}
