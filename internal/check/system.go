package check

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/2easy4marcus/ssh-agent/internal/model"
)

func (e *Engine) systemChecks(ctx context.Context, _ zerolog.Logger, t Target) []model.CheckResult {
	return []model.CheckResult{
		e.checkHostname(ctx, t),
		e.checkUptime(ctx, t),
		e.checkLoad(ctx, t),
		e.checkMemory(ctx, t),
		e.checkDisk(ctx, t),
	}
}

func (e *Engine) checkHostname(ctx context.Context, t Target) model.CheckResult {
	const name = "hostname"
	res, err := t.Remote.Run(ctx, "hostname")
	if err != nil {
		return commandWarn(model.CategorySystem, name, err)
	}
	hostname := strings.TrimSpace(res.Stdout)
	if hostname == "" {
		return unparseableWarn(model.CategorySystem, name, "hostname", res.Stdout+res.Stderr)
	}
	return model.NewCheckResult(model.CategorySystem, name, model.StatusOK,
		fmt.Sprintf("Hostname is %q", hostname))
}

func (e *Engine) checkUptime(ctx context.Context, t Target) model.CheckResult {
	const name = "uptime"
	res, err := t.Remote.Run(ctx, "uptime -p")
	if err != nil {
		return commandWarn(model.CategorySystem, name, err)
	}
	uptime := strings.TrimSpace(res.Stdout)
	if uptime == "" {
		return unparseableWarn(model.CategorySystem, name, "uptime -p", res.Stdout+res.Stderr)
	}
	return model.NewCheckResult(model.CategorySystem, name, model.StatusOK, uptime)
}

func (e *Engine) checkLoad(ctx context.Context, t Target) model.CheckResult {
	const name = "cpu_load"
	res, err := t.Remote.Run(ctx, "cat /proc/loadavg")
	if err != nil {
		return commandWarn(model.CategorySystem, name, err)
	}
	fields := strings.Fields(res.Stdout)
	if len(fields) == 0 {
		return unparseableWarn(model.CategorySystem, name, "cat /proc/loadavg", res.Stdout)
	}
	load, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return unparseableWarn(model.CategorySystem, name, "cat /proc/loadavg", res.Stdout)
	}

	res, err = t.Remote.Run(ctx, "nproc")
	if err != nil {
		return commandWarn(model.CategorySystem, name, err)
	}
	cores, err := strconv.Atoi(strings.TrimSpace(res.Stdout))
	if err != nil || cores <= 0 {
		return unparseableWarn(model.CategorySystem, name, "nproc", res.Stdout)
	}

	perCore := load / float64(cores)
	if perCore < e.cfg.Thresholds.LoadPerCore {
		return model.NewCheckResult(model.CategorySystem, name, model.StatusOK,
			fmt.Sprintf("Load average %.2f on %d cores (normal)", load, cores))
	}
	r := model.NewCheckResult(model.CategorySystem, name, model.StatusWarn,
		fmt.Sprintf("Load average %.2f on %d cores (busy)", load, cores))
	r.Hint = "Find heavy processes with top or htop"
	return r
}

func (e *Engine) checkMemory(ctx context.Context, t Target) model.CheckResult {
	const name = "memory"
	res, err := t.Remote.Run(ctx, "free -b")
	if err != nil {
		return commandWarn(model.CategorySystem, name, err)
	}

	var total, used float64
	for _, line := range strings.Split(res.Stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 3 && fields[0] == "Mem:" {
			total, _ = strconv.ParseFloat(fields[1], 64)
			used, _ = strconv.ParseFloat(fields[2], 64)
			break
		}
	}
	if total <= 0 {
		return unparseableWarn(model.CategorySystem, name, "free -b", res.Stdout)
	}

	pct := used / total * 100
	sizes := fmt.Sprintf("%s of %s", humanBytes(used), humanBytes(total))

	switch classifyUsage(e.cfg.Thresholds.Usage, pct) {
	case model.StatusFail:
		r := model.NewCheckResult(model.CategorySystem, name, model.StatusFail,
			fmt.Sprintf("Memory usage %.1f%% is critically high (%s)", pct, sizes))
		r.Hint = "Free memory now; the host may start killing processes"
		return r
	case model.StatusWarn:
		r := model.NewCheckResult(model.CategorySystem, name, model.StatusWarn,
			fmt.Sprintf("Memory usage %.1f%% is getting high (%s)", pct, sizes))
		r.Hint = "Close or restart heavy services to free memory"
		return r
	default:
		return model.NewCheckResult(model.CategorySystem, name, model.StatusOK,
			fmt.Sprintf("Memory usage %.1f%% (%s)", pct, sizes))
	}
}

func (e *Engine) checkDisk(ctx context.Context, t Target) model.CheckResult {
	const name = "disk"
	res, err := t.Remote.Run(ctx, "df -P /")
	if err != nil {
		return commandWarn(model.CategorySystem, name, err)
	}

	lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
	if len(lines) < 2 {
		return unparseableWarn(model.CategorySystem, name, "df -P /", res.Stdout)
	}
	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) < 6 || !strings.HasSuffix(fields[4], "%") {
		return unparseableWarn(model.CategorySystem, name, "df -P /", res.Stdout)
	}
	pct, err := strconv.ParseFloat(strings.TrimSuffix(fields[4], "%"), 64)
	if err != nil {
		return unparseableWarn(model.CategorySystem, name, "df -P /", res.Stdout)
	}
	totalKB, _ := strconv.ParseFloat(fields[1], 64)
	usedKB, _ := strconv.ParseFloat(fields[2], 64)
	sizes := fmt.Sprintf("%s of %s", humanBytes(usedKB*1024), humanBytes(totalKB*1024))

	switch classifyUsage(e.cfg.Thresholds.Usage, pct) {
	case model.StatusFail:
		r := model.NewCheckResult(model.CategorySystem, name, model.StatusFail,
			fmt.Sprintf("Disk usage %.0f%% is critically high (%s)", pct, sizes))
		r.Hint = "Free up space now; writes may start failing"
		return r
	case model.StatusWarn:
		r := model.NewCheckResult(model.CategorySystem, name, model.StatusWarn,
			fmt.Sprintf("Disk usage %.0f%% is getting high (%s)", pct, sizes))
		r.Hint = "Free up space: clear old logs or run docker system prune"
		return r
	default:
		return model.NewCheckResult(model.CategorySystem, name, model.StatusOK,
			fmt.Sprintf("Disk usage %.0f%% (%s)", pct, sizes))
	}
}
