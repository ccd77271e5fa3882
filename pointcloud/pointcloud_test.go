package pointcloud

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestBasicPointCloud(t *testing.T) {
	pc := New()
	test.That(t, pc.Size(), test.ShouldEqual, 0)

	test.That(t, pc.Set(NewVector(1, 2, 3)), test.ShouldBeNil)
	test.That(t, pc.Set(NewVector(-1, 0, 5)), test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 2)

	md := pc.MetaData()
	test.That(t, md.MinX, test.ShouldEqual, -1.0)
	test.That(t, md.MaxX, test.ShouldEqual, 1.0)
	test.That(t, md.MaxZ, test.ShouldEqual, 5.0)
}

func TestIterateBatches(t *testing.T) {
	pc := FromPoints([]r3.Vector{{X: 0}, {X: 1}, {X: 2}, {X: 3}, {X: 4}})

	var seen []float64
	pc.Iterate(2, 0, func(p r3.Vector) bool {
		seen = append(seen, p.X)
		return true
	})
	test.That(t, seen, test.ShouldResemble, []float64{0, 1, 2})

	seen = nil
	pc.Iterate(2, 1, func(p r3.Vector) bool {
		seen = append(seen, p.X)
		return true
	})
	test.That(t, seen, test.ShouldResemble, []float64{3, 4})
}

func TestIterateStopsEarly(t *testing.T) {
	pc := FromPoints([]r3.Vector{{X: 0}, {X: 1}, {X: 2}})
	count := 0
	pc.Iterate(0, 0, func(p r3.Vector) bool {
		count++
		return count < 2
	})
	test.That(t, count, test.ShouldEqual, 2)
}

type fakeSource struct {
	pts []r3.Vector
	ok  bool
}

func (f fakeSource) Points() ([]r3.Vector, bool) { return f.pts, f.ok }

func TestFromSourceConversionFailure(t *testing.T) {
	_, ok := FromSource(fakeSource{ok: false})
	test.That(t, ok, test.ShouldBeFalse)
}

func TestFromSourceSuccess(t *testing.T) {
	pc, ok := FromSource(fakeSource{pts: []r3.Vector{{X: 1}}, ok: true})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, pc.Size(), test.ShouldEqual, 1)
}
