package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siiapp/phasetrack/internal/model"
)

func TestPhaseProgressValidate(t *testing.T) {
	valid := model.PhaseProgress{
		OrderNumber: "OP-1001",
		CompanyCode: "01",
		Quantity:    100,
		Phase:       model.PhaseDispensacion,
		Plant:       model.Plant01,
	}

	tests := map[string]struct {
		mutate func(p *model.PhaseProgress)
		expErr bool
	}{
		"A complete progress is valid": {
			mutate: func(p *model.PhaseProgress) {},
		},
		"Missing order number is invalid": {
			mutate: func(p *model.PhaseProgress) { p.OrderNumber = "" },
			expErr: true,
		},
		"Missing company code is invalid": {
			mutate: func(p *model.PhaseProgress) { p.CompanyCode = "" },
			expErr: true,
		},
		"Zero quantity is invalid": {
			mutate: func(p *model.PhaseProgress) { p.Quantity = 0 },
			expErr: true,
		},
		"Negative quantity is invalid": {
			mutate: func(p *model.PhaseProgress) { p.Quantity = -5 },
			expErr: true,
		},
		"Unset phase is invalid": {
			mutate: func(p *model.PhaseProgress) { p.Phase = "" },
			expErr: true,
		},
		"Unset plant is invalid": {
			mutate: func(p *model.PhaseProgress) { p.Plant = "" },
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			p := valid
			test.mutate(&p)

			err := p.Validate()

			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
