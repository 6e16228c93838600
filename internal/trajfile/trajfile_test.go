package trajfile

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/planning/messages"
)

func TestRecorder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "trajectories")
	r, err := NewRecorder(dir, "planning.jsonl", 1, 1)
	test.That(t, err, test.ShouldBeNil)

	ok := &messages.ADCTrajectory{
		Header:           messages.Header{SequenceNum: 1, Status: &messages.Status{Code: messages.OK}},
		TrajectoryPoints: []messages.TrajectoryPoint{{PathPoint: messages.PathPoint{X: 1}, V: 2}},
	}
	notReady := &messages.ADCTrajectory{Header: messages.Header{SequenceNum: 2}}
	notReady.SetNotReady("map not ready")

	test.That(t, r.Publish(context.Background(), ok), test.ShouldBeNil)
	test.That(t, r.Publish(context.Background(), notReady), test.ShouldBeNil)
	test.That(t, r.Close(), test.ShouldBeNil)
	test.That(t, r.Close(), test.ShouldBeNil)
	test.That(t, r.Publish(context.Background(), ok), test.ShouldBeError, "trajectory recorder is closed")

	msgs, err := ReadAll(filepath.Join(dir, "planning.jsonl"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, msgs, test.ShouldHaveLength, 2)
	test.That(t, msgs[0], test.ShouldResemble, ok)
	test.That(t, msgs[1].Header.SequenceNum, test.ShouldEqual, uint32(2))
	test.That(t, msgs[1].NotReadyReason(), test.ShouldEqual, "map not ready")
}

func TestDecode(t *testing.T) {
	msgs, err := decode(strings.NewReader("{\"header\":{\"sequence_num\":3}}\n\n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, msgs, test.ShouldHaveLength, 1)
	test.That(t, msgs[0].Header.SequenceNum, test.ShouldEqual, uint32(3))

	_, err = decode(strings.NewReader("{}\n{"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "line 2")

	_, err = ReadAll(filepath.Join(t.TempDir(), "missing.jsonl"))
	test.That(t, err, test.ShouldNotBeNil)
}
