package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/2easy4marcus/ssh-agent/internal/model"
)

func (e *Engine) networkChecks(ctx context.Context, log zerolog.Logger, t Target) []model.CheckResult {
	var results []model.CheckResult
	if t.Profile.VPN == "" {
		log.Debug().Msg("no vpn type configured, skipping reachability probe")
	} else {
		results = append(results, e.checkVPN(ctx, t))
	}
	results = append(results, e.checkInterfaces(ctx, t))
	return results
}

// checkVPN probes the host over the overlay network from the machine
// running the diagnostic, so it works even when the host answers SSH over
// a different path.
func (e *Engine) checkVPN(ctx context.Context, t Target) model.CheckResult {
	const name = "vpn"
	vpn := t.Profile.VPN
	hostname := t.Profile.Connection.Hostname

	res, err := t.Local.Run(ctx, fmt.Sprintf("%s ping -c 1 %s", vpn, hostname))
	if err != nil {
		return commandWarn(model.CategoryNetwork, name, err)
	}
	if strings.Contains(res.Stdout, "pong") {
		return model.NewCheckResult(model.CategoryNetwork, name, model.StatusOK,
			fmt.Sprintf("VPN %s can reach %s", vpn, hostname))
	}
	r := model.NewCheckResult(model.CategoryNetwork, name, model.StatusFail,
		fmt.Sprintf("VPN %s cannot reach %s", vpn, hostname))
	r.Hint = fmt.Sprintf("Check '%s status' on this machine and on the host", vpn)
	r.Payload = res.Stdout + res.Stderr
	return r
}

func (e *Engine) checkInterfaces(ctx context.Context, t Target) model.CheckResult {
	const name = "interfaces"
	res, err := t.Remote.Run(ctx, "ip -o link show")
	if err != nil {
		return commandWarn(model.CategoryNetwork, name, err)
	}

	var up, down []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.HasSuffix(fields[1], ":") {
			continue
		}
		ifName := strings.TrimSuffix(fields[1], ":")
		ifName = strings.SplitN(ifName, "@", 2)[0]
		if ifName == "lo" {
			continue
		}
		state := ""
		for i, f := range fields {
			if f == "state" && i+1 < len(fields) {
				state = fields[i+1]
				break
			}
		}
		if state == "UP" {
			up = append(up, ifName)
		} else {
			down = append(down, ifName)
		}
	}

	if len(up) == 0 && len(down) == 0 {
		return unparseableWarn(model.CategoryNetwork, name, "ip -o link show", res.Stdout)
	}
	if len(up) == 0 {
		r := model.NewCheckResult(model.CategoryNetwork, name, model.StatusFail,
			fmt.Sprintf("No network interfaces are up (down: %s)", strings.Join(down, ", ")))
		r.Hint = "Check cables and radio state with ip link"
		return r
	}

	message := fmt.Sprintf("%d interfaces up (%s)", len(up), strings.Join(up, ", "))
	if len(down) > 0 {
		message += fmt.Sprintf(", %d down (%s)", len(down), strings.Join(down, ", "))
	}
	return model.NewCheckResult(model.CategoryNetwork, name, model.StatusOK, message)
}
