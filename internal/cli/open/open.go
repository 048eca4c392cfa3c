package open

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"geepr/internal/cli/paramutils"
	"geepr/internal/cli/utils"
	"geepr/internal/configutils"
	"geepr/internal/domain"
	"geepr/internal/domain/pullrequest"
	"geepr/internal/pkg/lazy"

	"github.com/spf13/cobra"
)

type openCmdParams struct {
	PrintOnly bool
}

type detailsLoader interface {
	Get(id pullrequest.EntityID) (*pullrequest.DataProvider, func())
}

func pullRequestsURL(host string, repo domain.GitRepository) string {
	return fmt.Sprintf("https://%s/%s/pulls", host, repo.FullName())
}

func resolveURL(ctx context.Context, providers detailsLoader, listURL string, args []string) (string, error) {
	if len(args) == 0 {
		return listURL, nil
	}

	id, err := paramutils.ParseIDArg(args)
	if err != nil {
		return "", err
	}

	p, release := providers.Get(id)
	defer release()

	d, err := p.Details.LoadDetails().Await(ctx)
	if err != nil {
		return "", err
	}

	return d.URL, nil
}

var openInBrowser = func(url string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	}

	return fmt.Errorf("unsupported platform %s", runtime.GOOS)
}

func execute(url string, params *openCmdParams, out io.Writer) error {
	if params.PrintOnly {
		_, err := fmt.Fprintln(out, url)
		return err
	}

	return openInBrowser(url)
}

func runCmd(cmd *cobra.Command, args []string) error {
	flags := paramutils.NewFlagRepo(cmd.Flags())
	params := &openCmdParams{PrintOnly: flags.GetBoolOrDefault("print", false)}

	s, err := paramutils.OpenSession(flags, lazy.GoRunner)
	if err != nil {
		return err
	}
	defer s.Close()

	v, err := paramutils.LoadConfig(flags)
	if err != nil {
		return err
	}

	url, err := resolveURL(cmd.Context(), s.Providers, pullRequestsURL(v.GetString(configutils.KeyHost), s.Repository), args)
	if err != nil {
		return err
	}

	return execute(url, params, cmd.OutOrStdout())
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "open [ID]",
		Aliases: []string{"o", "op"},
		Args:    cobra.MaximumNArgs(1),
		Short:   "Open pull requests",
		Long:    `Opens the pull request page, or the list of pull requests, of the Gitee repository in a browser.`,
		Run:     utils.RunCommandWrapper(runCmd),
	}

	cmd.Flags().Bool("print", false, "print the pull request URL")

	return cmd
}
