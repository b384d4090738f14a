package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

type roleUser struct {
	User
	roles []string
}

func (u roleUser) Roles() []string { return u.roles }

func TestHasRole(t *testing.T) {
	assert.True(t, HasRole(roleUser{roles: []string{"guest", RoleModerator}}, RoleModerator))
	assert.False(t, HasRole(roleUser{roles: []string{"guest"}}, RoleModerator))
	assert.False(t, HasRole(nil, RoleModerator))
}

func TestTransform_Quaternion(t *testing.T) {
	q := IdentityTransform().Quaternion()
	assert.InDelta(t, 1, q.W, 1e-6)
	assert.InDelta(t, 0, q.X, 1e-6)

	q = Transform{Rotation: V3(0, 90, 0)}.Quaternion()
	assert.InDelta(t, math32.Sqrt(0.5), q.Y, 1e-5)
	assert.InDelta(t, math32.Sqrt(0.5), q.W, 1e-5)
}

func TestVec3_Mul(t *testing.T) {
	assert.Equal(t, V3(2, 6, 12), V3(1, 2, 3).Mul(V3(2, 3, 4)))
	assert.Equal(t, Uniform(0.5), Uniform(1).MulScalar(0.5))
}
