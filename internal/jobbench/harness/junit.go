package harness

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/jstemmer/go-junit-report/v2/junit"
	"github.com/pkg/errors"
)

// JUnit converts the report into a single-test JUnit suite.
func (r *Report) JUnit() junit.Testsuites {
	testcase := junit.Testcase{
		Name:      "launch-" + strings.Join(r.Request.ExeArgs, "-"),
		Classname: "taskgateway",
		Time:      fmt.Sprintf("%.3f", r.Duration.Seconds()),
	}
	switch {
	case r.LaunchErr != nil:
		testcase.Error = &junit.Result{Message: "task launch failed", Type: "LaunchError", Data: r.LaunchErr.Error()}
	case r.Wait != nil && r.Wait.State != Succeeded:
		testcase.Failure = &junit.Result{
			Message: fmt.Sprintf("task ended in state %s", r.Wait.State),
			Type:    string(r.Wait.State),
			Data:    r.failureDetail(),
		}
	}

	suite := junit.Testsuite{Name: "jobbench-harness"}
	suite.SetTimestamp(r.StartTime)
	if r.Launch != nil {
		suite.AddProperty("taskArn", r.Launch.TaskArn)
	}
	suite.AddTestcase(testcase)
	suite.Time = testcase.Time

	var suites junit.Testsuites
	suites.AddSuite(suite)
	return suites
}

func (r *Report) failureDetail() string {
	if r.Wait.Status == nil {
		return "no status was read"
	}
	detail := "last status " + r.Wait.Status.LastStatus
	if exitCode, ok := r.Wait.Status.ExitCode(); ok {
		detail += fmt.Sprintf(", exit code %d", exitCode)
	}
	if r.Wait.Status.StoppedReason != "" {
		detail += ", " + r.Wait.Status.StoppedReason
	}
	return detail
}

func (r *Report) WriteJUnit(out io.Writer) error {
	data, err := xml.MarshalIndent(r.JUnit(), "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := io.WriteString(out, xml.Header); err != nil {
		return errors.WithStack(err)
	}
	_, err = out.Write(append(data, '\n'))
	return errors.WithStack(err)
}
