package physical_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecflow/physical"
	"github.com/hupe1980/vecflow/testutil"
)

func TestAnalyzeExec(t *testing.T) {
	rec := testutil.Int64Record(memory.DefaultAllocator, "id", 1, 2, 3)
	leaf := testutil.NewMockExec("leaf").WithCount(physical.MetricIOPS, 4).WithRecords(rec)
	analyze := physical.NewAnalyzeExec(true, leaf)

	assert.Equal(t, []physical.ExecutionPlan{leaf}, analyze.Children())
	assert.Equal(t, "AnalyzeExec verbose=true", physical.Describe(analyze, physical.DisplayDefault))

	stream, err := analyze.Execute(0, newTask())
	require.NoError(t, err)
	defer stream.Close()

	out, err := stream.Read(context.Background())
	require.NoError(t, err)
	defer out.Release()

	planType := out.Column(0).(*array.String)
	plan := out.Column(1).(*array.String)
	require.Equal(t, 3, planType.Len())
	assert.Equal(t, "Plan with Metrics", planType.Value(0))
	assert.Equal(t, "leaf, metrics=[iops=4, output_rows=3, elapsed_compute="+elapsedOf(t, leaf)+"]\n", plan.Value(0))
	assert.Equal(t, "Output Rows", planType.Value(1))
	assert.Equal(t, "3", plan.Value(1))

	_, err = stream.Read(context.Background())
	assert.Equal(t, io.EOF, err)

	rows, ok := analyze.Metrics().OutputRows()
	assert.True(t, ok)
	assert.Equal(t, 3, rows)
}

func TestAnalyzeExec_InputError(t *testing.T) {
	boom := errors.New("boom")
	analyze := physical.NewAnalyzeExec(false, testutil.NewMockExec("leaf").WithExecuteError(boom))

	stream, err := analyze.Execute(0, newTask())
	require.NoError(t, err)

	_, err = stream.Read(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestAnalyzeExec_WithNewChildren(t *testing.T) {
	analyze := physical.NewAnalyzeExec(false, testutil.NewMockExec("a"))

	replaced, err := analyze.WithNewChildren([]physical.ExecutionPlan{testutil.NewMockExec("b")})
	require.NoError(t, err)
	assert.Equal(t, "b", replaced.Children()[0].Name())

	_, err = analyze.WithNewChildren(nil)
	assert.ErrorIs(t, err, physical.ErrExecution)

	_, err = analyze.Execute(1, newTask())
	assert.ErrorIs(t, err, physical.ErrExecution)
}

func TestIndent(t *testing.T) {
	c := testutil.NewMockExec("C")
	b := testutil.NewMockExec("B", c)
	a := testutil.NewMockExec("A", b, testutil.NewMockExec("D"))

	assert.Equal(t, "A\n  B\n    C\n  D\n", physical.Indent(a, false))
	assert.Equal(t, "A, metrics=[]\n  B, metrics=[]\n    C, metrics=[]\n  D, metrics=[]\n", physical.Indent(a, true))
}

func elapsedOf(t *testing.T, plan physical.ExecutionPlan) string {
	t.Helper()
	elapsed, ok := plan.Metrics().FindTime(physical.MetricElapsedCompute)
	require.True(t, ok)
	return elapsed.Value().String()
}
