package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
)

func TestRiskAssessor_Assess(t *testing.T) {
	a := entities.NewRiskAssessor()

	tests := []struct {
		name string
		req  entities.ActionRequest
		want entities.RiskTier
	}{
		{"Read is low", entities.NewActionRequest(entities.ActionFileRead, "/tmp/a"), entities.RiskLow},
		{"Write is medium", entities.NewActionRequest(entities.ActionFileWrite, "/tmp/a"), entities.RiskMedium},
		{"Delete is medium", entities.NewActionRequest(entities.ActionFileDelete, "/tmp/a"), entities.RiskMedium},
		{"Kill is high", entities.NewActionRequest(entities.ActionProcessKill, "notepad"), entities.RiskHigh},
		{"Shell is critical", entities.NewActionRequest(entities.ActionShellExec, "rm -rf /"), entities.RiskCritical},
		{"Screenshot is low", entities.NewActionRequest(entities.ActionScreenshot, ""), entities.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Assess(tt.req))
		})
	}
}

func TestRiskAssessor_SizeEscalation(t *testing.T) {
	a := entities.NewRiskAssessor(entities.WithMaxFileSize(1024))

	// At the threshold: no escalation.
	read := entities.NewActionRequest(entities.ActionFileRead, "/tmp/a").WithSize(1024)
	assert.Equal(t, entities.RiskLow, a.Assess(read))

	// One byte over: Low escalates to Medium, Medium to High.
	read = read.WithSize(1025)
	assert.Equal(t, entities.RiskMedium, a.Assess(read))

	write := entities.NewActionRequest(entities.ActionFileWrite, "/tmp/a").WithSize(1025)
	assert.Equal(t, entities.RiskHigh, a.Assess(write))
}

func TestRiskAssessor_ShellIgnoresSize(t *testing.T) {
	a := entities.NewRiskAssessor(entities.WithMaxFileSize(1))

	req := entities.NewActionRequest(entities.ActionShellExec, "echo hi").WithSize(0)
	assert.Equal(t, entities.RiskCritical, a.Assess(req))
}

func TestRiskAssessor_Default(t *testing.T) {
	a := entities.NewRiskAssessor()
	assert.Equal(t, int64(5*1024*1024), a.MaxFileSizeBytes())

	// Non-positive override is ignored.
	a = entities.NewRiskAssessor(entities.WithMaxFileSize(0))
	assert.Equal(t, int64(5*1024*1024), a.MaxFileSizeBytes())
}

func TestRiskTier_String(t *testing.T) {
	assert.Equal(t, "Low", entities.RiskLow.String())
	assert.Equal(t, "Critical", entities.RiskCritical.String())
	assert.Equal(t, "Unknown", entities.RiskTier(42).String())
}
