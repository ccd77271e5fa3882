package spatialmath

import (
	"testing"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
	"go.viam.com/test"
)

func TestIdentityComposition(t *testing.T) {
	p := NewPoseFromPoint(r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, AlmostEqual(p.Compose(Identity()), p, 1e-9), test.ShouldBeTrue)
	test.That(t, AlmostEqual(Identity().Compose(p), p, 1e-9), test.ShouldBeTrue)
}

func TestComposeIsOrderedTranslation(t *testing.T) {
	a := NewPoseFromPoint(r3.Vector{X: 1, Y: 0, Z: 0})
	b := NewPoseFromPoint(r3.Vector{X: 0, Y: 1, Z: 0})
	got := a.Compose(b)
	test.That(t, got.Translation(), test.ShouldResemble, r3.Vector{X: 1, Y: 1, Z: 0})
}

func TestInverseUndoesCompose(t *testing.T) {
	rot := quat.Number{Real: 0.7071067811865476, Kmag: 0.7071067811865476} // 90deg about Z
	p := NewPose(r3.Vector{X: 3, Y: -1, Z: 2}, rot)
	roundTrip := p.Compose(p.Inverse())
	test.That(t, AlmostEqual(roundTrip, Identity(), 1e-9), test.ShouldBeTrue)
}

func TestDeltaRecoversOther(t *testing.T) {
	from := NewPoseFromPoint(r3.Vector{X: 1, Y: 1, Z: 1})
	to := NewPoseFromPoint(r3.Vector{X: 4, Y: 1, Z: 1})
	delta := from.Delta(to)
	test.That(t, AlmostEqual(from.Compose(delta), to, 1e-9), test.ShouldBeTrue)
}

func TestTranslationNorm(t *testing.T) {
	p := NewPoseFromPoint(r3.Vector{X: 3, Y: 4, Z: 0})
	test.That(t, p.TranslationNorm(), test.ShouldEqual, 5.0)
}
