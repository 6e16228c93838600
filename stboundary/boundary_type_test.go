package stboundary

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/planning/logging"
)

func TestTypeNames(t *testing.T) {
	for typ, name := range map[BoundaryType]string{
		Unknown:   "UNKNOWN",
		Stop:      "STOP",
		Follow:    "FOLLOW",
		Yield:     "YIELD",
		Overtake:  "OVERTAKE",
		KeepClear: "KEEP_CLEAR",
	} {
		got, ok := LookupTypeName(typ)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, got, test.ShouldEqual, name)
		test.That(t, typ.String(), test.ShouldEqual, name)

		parsed, ok := BoundaryTypeFromName(name)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, parsed, test.ShouldEqual, typ)
	}

	_, ok := BoundaryTypeFromName("SIDEPASS")
	test.That(t, ok, test.ShouldBeFalse)
}

func TestUnrecognizedTypeName(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	prev := logging.Global()
	logging.ReplaceGlobal(logger)
	defer logging.ReplaceGlobal(prev)

	name, ok := LookupTypeName(BoundaryType(99))
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, name, test.ShouldEqual, "UNKNOWN")
	test.That(t, logs.Len(), test.ShouldEqual, 0)

	test.That(t, TypeName(BoundaryType(99)), test.ShouldEqual, "UNKNOWN")
	test.That(t, logs.FilterMessageSnippet("unknown boundary type").Len(), test.ShouldEqual, 1)
}
