package check

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/2easy4marcus/ssh-agent/internal/model"
)

func (e *Engine) serviceChecks(ctx context.Context, log zerolog.Logger, t Target) []model.CheckResult {
	var results []model.CheckResult

	if t.Profile.Services.ComposeDir != "" {
		daemon := e.checkDockerDaemon(ctx, t)
		results = append(results, daemon)

		containers, discoveryResults := e.discoverContainers(ctx, log, t)
		results = append(results, discoveryResults...)

		for _, container := range containers {
			if daemon.Status == model.StatusFail {
				// Probing containers without a daemon only produces noise,
				// so each expected container fails outright.
				r := model.NewCheckResult(model.CategoryServices, "container:"+container, model.StatusFail,
					fmt.Sprintf("Container %s was not checked because the Docker daemon is down", container))
				r.Hint = "Start Docker first: sudo systemctl start docker"
				results = append(results, r)
				continue
			}
			results = append(results, e.checkContainer(ctx, t, container))
		}
	}

	for _, svc := range t.Profile.Services.SystemdServices {
		results = append(results, e.checkSystemdService(ctx, t, svc))
	}
	return results
}

func (e *Engine) checkDockerDaemon(ctx context.Context, t Target) model.CheckResult {
	const name = "docker_daemon"
	res, err := t.Remote.Run(ctx, "systemctl is-active docker")
	if err != nil {
		return commandWarn(model.CategoryServices, name, err)
	}
	state := strings.TrimSpace(res.Stdout)
	if state == "" {
		return unparseableWarn(model.CategoryServices, name, "systemctl is-active docker", res.Stdout+res.Stderr)
	}
	if state == "active" {
		return model.NewCheckResult(model.CategoryServices, name, model.StatusOK,
			"Docker daemon is running")
	}
	r := model.NewCheckResult(model.CategoryServices, name, model.StatusFail,
		fmt.Sprintf("Docker daemon is not running (state: %s)", state))
	r.Hint = "Start it: sudo systemctl start docker"
	r.Payload = e.fetchLogs(ctx, t, "journalctl -u docker --no-pager -n 50")
	r.Artifact = "service_docker"
	return r
}

// discoverContainers lists the service names declared in the compose files
// under the profile's compose directory, sorted and deduplicated. Files
// that cannot be read or parsed surface as warn results rather than
// aborting discovery.
func (e *Engine) discoverContainers(ctx context.Context, log zerolog.Logger, t Target) ([]string, []model.CheckResult) {
	dir := t.Profile.Services.ComposeDir
	find := fmt.Sprintf(`find '%s' -maxdepth 1 -type f \( -name '*.yml' -o -name '*.yaml' \) 2>/dev/null | sort`, dir)
	res, err := t.Remote.Run(ctx, find)
	if err != nil {
		return nil, []model.CheckResult{commandWarn(model.CategoryServices, "compose_discovery", err)}
	}

	var files []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	if len(files) == 0 {
		r := model.NewCheckResult(model.CategoryServices, "compose_discovery", model.StatusWarn,
			fmt.Sprintf("No compose files found in %s", dir))
		r.Hint = "Check services.compose_dir in the inventory"
		return nil, []model.CheckResult{r}
	}

	seen := make(map[string]bool)
	var names []string
	var warns []model.CheckResult
	for _, file := range files {
		res, err := t.Remote.Run(ctx, fmt.Sprintf("cat '%s'", file))
		if err != nil {
			warns = append(warns, commandWarn(model.CategoryServices, "compose:"+filepath.Base(file), err))
			continue
		}
		var doc struct {
			Services map[string]any `yaml:"services"`
		}
		if err := yaml.Unmarshal([]byte(res.Stdout), &doc); err != nil {
			log.Debug().Str("file", file).Err(err).Msg("compose file did not parse")
			r := model.NewCheckResult(model.CategoryServices, "compose:"+filepath.Base(file), model.StatusWarn,
				fmt.Sprintf("Could not parse compose file %s", file))
			r.Payload = res.Stdout
			warns = append(warns, r)
			continue
		}
		for svc := range doc.Services {
			if !seen[svc] {
				seen[svc] = true
				names = append(names, svc)
			}
		}
	}
	sort.Strings(names)
	return names, warns
}

func (e *Engine) checkContainer(ctx context.Context, t Target, container string) model.CheckResult {
	name := "container:" + container
	command := fmt.Sprintf("docker ps -a --filter 'name=%s' --format '{{.State}} {{.Status}}'", container)
	res, err := t.Remote.Run(ctx, command)
	if err != nil {
		return commandWarn(model.CategoryServices, name, err)
	}

	line := firstLine(res.Stdout)
	if line == "" {
		r := model.NewCheckResult(model.CategoryServices, name, model.StatusFail,
			fmt.Sprintf("Container %s does not exist", container))
		r.Hint = fmt.Sprintf("Deploy it: docker compose up -d (in %s)", t.Profile.Services.ComposeDir)
		return r
	}

	parts := strings.SplitN(line, " ", 2)
	state := parts[0]
	status := ""
	if len(parts) == 2 {
		status = parts[1]
	}

	switch state {
	case "running":
		if strings.Contains(status, "(unhealthy)") {
			r := model.NewCheckResult(model.CategoryServices, name, model.StatusWarn,
				fmt.Sprintf("Container %s is running but unhealthy (%s)", container, status))
			r.Hint = fmt.Sprintf("Check its healthcheck: docker inspect %s", container)
			return r
		}
		return model.NewCheckResult(model.CategoryServices, name, model.StatusOK,
			fmt.Sprintf("Container %s is running (%s)", container, status))
	case "restarting":
		r := model.NewCheckResult(model.CategoryServices, name, model.StatusFail,
			fmt.Sprintf("Container %s is crash-looping (%s)", container, status))
		r.Hint = fmt.Sprintf("URGENT: %s is restarting over and over; check its logs now", container)
		r.Payload = e.fetchLogs(ctx, t, fmt.Sprintf("docker logs --tail 50 %s 2>&1", container))
		r.Artifact = "container_" + container
		return r
	case "exited", "dead", "created", "paused":
		r := model.NewCheckResult(model.CategoryServices, name, model.StatusFail,
			fmt.Sprintf("Container %s is not running (state: %s)", container, state))
		r.Hint = fmt.Sprintf("Start it: docker compose up -d %s (in %s)", container, t.Profile.Services.ComposeDir)
		r.Payload = e.fetchLogs(ctx, t, fmt.Sprintf("docker logs --tail 50 %s 2>&1", container))
		r.Artifact = "container_" + container
		return r
	default:
		return unparseableWarn(model.CategoryServices, name, command, res.Stdout)
	}
}

func (e *Engine) checkSystemdService(ctx context.Context, t Target, svc string) model.CheckResult {
	name := "service:" + svc
	command := fmt.Sprintf("systemctl is-active %s", svc)
	res, err := t.Remote.Run(ctx, command)
	if err != nil {
		return commandWarn(model.CategoryServices, name, err)
	}
	state := strings.TrimSpace(res.Stdout)
	if state == "" {
		return unparseableWarn(model.CategoryServices, name, command, res.Stdout+res.Stderr)
	}
	if state == "active" {
		return model.NewCheckResult(model.CategoryServices, name, model.StatusOK,
			fmt.Sprintf("Service %s is active", svc))
	}
	r := model.NewCheckResult(model.CategoryServices, name, model.StatusFail,
		fmt.Sprintf("Service %s is not active (state: %s)", svc, state))
	r.Hint = fmt.Sprintf("Start it: sudo systemctl start %s", svc)
	r.Payload = e.fetchLogs(ctx, t, fmt.Sprintf("journalctl -u %s --no-pager -n 50", svc))
	r.Artifact = "service_" + svc
	return r
}

// fetchLogs grabs a log tail for bundle collection. Collection is
// best-effort; a failure here must not change the check verdict.
func (e *Engine) fetchLogs(ctx context.Context, t Target, command string) string {
	res, err := t.Remote.Run(ctx, command)
	if err != nil {
		return ""
	}
	if strings.TrimSpace(res.Stdout) == "" {
		return res.Stderr
	}
	return res.Stdout
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
