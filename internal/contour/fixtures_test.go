package contour_test

import (
	"testing"

	"github.com/MeKo-Tech/moore/internal/contour"
	"github.com/MeKo-Tech/moore/internal/output"
	"github.com/MeKo-Tech/moore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace_Fixtures(t *testing.T) {
	for _, f := range testutil.LoadAllFixtures(t) {
		t.Run(f.Name, func(t *testing.T) {
			c, err := contour.Trace(f.ParsedGrid(t))
			if f.Error != "" {
				require.Error(t, err)
				assert.Equal(t, f.Error, output.ErrorType(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, contour.Contour(f.Expected), c)
		})
	}
}
