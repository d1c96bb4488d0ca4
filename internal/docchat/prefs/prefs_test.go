package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/docchat-core/client/internal/core/error"
	"github.com/docchat-core/client/internal/docchat/model"
)

func TestDefaults(t *testing.T) {
	assert.Equal(t, model.English, New(model.English).Language())
	assert.Equal(t, model.Telugu, New(model.Telugu).Language())
	assert.Equal(t, model.English, New("klingon").Language())
	assert.Equal(t, model.English, New("").Language())
}

func TestSetLanguage(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Language
		wantErr bool
	}{
		{in: "hindi", want: model.Hindi},
		{in: " Telugu ", want: model.Telugu},
		{in: "ENGLISH", want: model.English},
		{in: "french", want: model.English, wantErr: true},
		{in: "", want: model.English, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p := New(model.English)
			err := p.SetLanguage(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errx.IsValidation(err))
				assert.ErrorIs(t, err, errx.ErrUnknownLanguage)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, p.Language())
		})
	}
}

func TestRejectedValueKeepsCurrent(t *testing.T) {
	p := New(model.English)
	require.NoError(t, p.SetLanguage("hindi"))
	require.Error(t, p.SetLanguage("german"))
	assert.Equal(t, model.Hindi, p.Language())
}
