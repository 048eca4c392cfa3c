package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"geepr/internal/configutils"
	"geepr/internal/domain/pullrequest"
	"geepr/internal/errcodes"
	"geepr/internal/pkg/gitee"
	"geepr/internal/pkg/lazy"
	"geepr/internal/pkg/metrics"
	"geepr/internal/systemcodes"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// SetupLogging points the global logger at w. debug wins over level.
func SetupLogging(w io.Writer, debug bool, level string) error {
	lvl := zerolog.DebugLevel
	if !debug {
		var err error
		lvl, err = zerolog.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", configutils.KeyLogLevel, level, err)
		}
		if lvl == zerolog.NoLevel {
			lvl = zerolog.InfoLevel
		}
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"})

	return nil
}

// LogMetrics writes the counters of c to the debug log.
func LogMetrics(c *metrics.PrometheusCollector) {
	if c == nil || zerolog.GlobalLevel() > zerolog.DebugLevel {
		return
	}

	samples, err := c.Samples()
	if err != nil {
		log.Debug().Err(err).Msg("could not gather metrics")
		return
	}

	for _, s := range samples {
		ev := log.Debug().Str("metric", s.Name).Float64("value", s.Value)
		for k, v := range s.Labels {
			ev = ev.Str(k, v)
		}
		ev.Msg("metric")
	}
}

type PromptPullRequest struct {
	ID    pullrequest.EntityID
	Title string
}

func maxPRDescriptionLength(prs []*pullrequest.Details, limit int) int {
	maxLen := 0
	for _, pr := range prs {
		l := len(pr.Source.Name) + len(pr.Destination.Name) + 4
		if l > maxLen {
			maxLen = l
		}
	}

	if limit > 0 && maxLen > limit {
		return limit
	}

	return maxLen
}

func getPromptPullRequestSlice(prs []*pullrequest.Details) []*PromptPullRequest {
	maxLen := maxPRDescriptionLength(prs, 30)
	prFormat := fmt.Sprintf("#%%s: %%-%ds %%s %%s", maxLen)
	options := make([]*PromptPullRequest, 0, len(prs))
	for _, pr := range prs {
		prDesc := fmt.Sprintf(
			prFormat,
			pr.ID,
			BranchDescription(pr),
			pr.Updated.Format("(2006-01-02 15:04)"),
			pr.Title,
		)
		options = append(options, &PromptPullRequest{
			ID:    pr.ID,
			Title: prDesc,
		})
	}

	return options
}

func BranchDescription(pr *pullrequest.Details) string {
	return fmt.Sprintf("[%s->%s]", pr.Source.Name, pr.Destination.Name)
}

var askOne = survey.AskOne

// PromptPullRequestSelect asks the user to pick one of prs. It returns
// nil when nothing was picked.
func PromptPullRequestSelect(message string, prs []*pullrequest.Details) (*PromptPullRequest, error) {
	options := getPromptPullRequestSlice(prs)

	var answer string
	titles := make([]string, 0, len(options))
	for _, v := range options {
		titles = append(titles, v.Title)
	}
	prompt := &survey.Select{
		Message:  message,
		Options:  titles,
		PageSize: 10,
	}
	if err := askOne(prompt, &answer); err != nil {
		return nil, err
	}

	for _, v := range options {
		if v.Title == answer {
			return v, nil
		}
	}

	return nil, nil
}

func Confirm(message string) (bool, error) {
	ok := false
	err := askOne(&survey.Confirm{Message: message}, &ok)
	return ok, err
}

// PromptText asks for a multi-line text and trims it.
func PromptText(message string) (string, error) {
	var text string
	err := askOne(&survey.Multiline{Message: message}, &text)
	return strings.TrimSpace(text), err
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, errcodes.ErrAborted), lazy.IsCancelled(err):
		return systemcodes.ErrorCodeAborted
	case errors.Is(err, gitee.ErrMissingToken),
		errors.Is(err, configutils.ErrHomeDirNotFound),
		errors.Is(err, configutils.ErrConfigFileIsDir):
		return systemcodes.ErrorCodeConfig
	case errors.Is(err, errcodes.ErrMissingRepository),
		errors.Is(err, errcodes.ErrMissingPullRequestID),
		errors.Is(err, errcodes.ErrRepositoryMustBeInFormOwnerRepo),
		errors.Is(err, errcodes.ErrUnknownState),
		errors.Is(err, errcodes.ErrUnknownMergeMethod),
		errors.Is(err, errcodes.ErrLineRequiresPath),
		errors.Is(err, errcodes.ErrReplyWithPosition):
		return systemcodes.ErrorCodeUsage
	default:
		return systemcodes.ErrorCodeGeneric
	}
}

var exit = os.Exit

type runCommandError func(*cobra.Command, []string) error
type runCommandNoError func(*cobra.Command, []string)

func RunCommandWrapper(fn runCommandError) runCommandNoError {
	return func(cmd *cobra.Command, args []string) {
		err := fn(cmd, args)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			exit(exitCode(err))
		}
	}
}
