package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidReportTransition(t *testing.T) {
	tbl := []struct {
		from, to string
		want     bool
	}{
		{ReportStatusReported, ReportStatusInvestigating, true},
		{ReportStatusReported, ReportStatusResolved, true},
		{ReportStatusInvestigating, ReportStatusResolved, true},
		{ReportStatusInvestigating, ReportStatusReported, false},
		{ReportStatusResolved, ReportStatusInvestigating, false},
		{ReportStatusResolved, ReportStatusReported, false},
		{ReportStatusReported, "archived", false},
	}
	for _, tc := range tbl {
		assert.Equal(t, tc.want, ValidReportTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestValidReportType(t *testing.T) {
	assert.True(t, ValidReportType(ReportIllegalDumping))
	assert.True(t, ValidReportType(ReportOther))
	assert.False(t, ValidReportType("noise_complaint"))
}
