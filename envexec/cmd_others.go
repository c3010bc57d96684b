//go:build !unix

package envexec

import "os/exec"

func setProcessGroup(cmd *exec.Cmd) {}
