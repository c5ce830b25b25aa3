package job

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"renditionmaker/models"
)

func TestParseDimension(t *testing.T) {
	tests := []struct {
		token string
		want  models.DimensionSpec
		ok    bool
	}{
		{"[100:200:true]", models.DimensionSpec{Width: 100, Height: 200, CenterCrop: true}, true},
		{"50:60", models.DimensionSpec{Width: 50, Height: 60}, true},
		{"  319:319:TRUE ", models.DimensionSpec{Width: 319, Height: 319, CenterCrop: true}, true},
		{"48:48:false", models.DimensionSpec{Width: 48, Height: 48}, true},
		{"48:48:yes", models.DimensionSpec{Width: 48, Height: 48}, true},
		{"[140:100]:ignored", models.DimensionSpec{Width: 140, Height: 100}, true},
		{"bad:data", models.DimensionSpec{}, false},
		{"only-one-field", models.DimensionSpec{}, false},
		{"[100:100", models.DimensionSpec{}, false},
		{"100:", models.DimensionSpec{}, false},
		{"0:100", models.DimensionSpec{}, false},
		{"-5:100", models.DimensionSpec{}, false},
		{"", models.DimensionSpec{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := ParseDimension(tt.token)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
