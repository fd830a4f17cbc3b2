/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package jvm

import (
	"context"
	"fmt"
	"strings"

	ps "github.com/shirou/gopsutil/v4/process"
)

// maxCommandLength bounds the command line recorded per process; long java
// invocations carry enormous classpaths.
const maxCommandLength = 200

// JVMProcess describes one running JVM candidate for attachment.
type JVMProcess struct {
	PID     int32
	Command string
}

// AvailableJVMs enumerates running JVM processes on this machine.
func AvailableJVMs(ctx context.Context) ([]JVMProcess, error) {
	procs, err := ps.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	var jvms []JVMProcess
	for _, proc := range procs {
		name, nameErr := proc.NameWithContext(ctx)
		if nameErr != nil {
			// The process may have exited, or be inaccessible; skip it.
			continue
		}
		if !isJavaProcess(name) {
			continue
		}

		command, cmdErr := proc.CmdlineWithContext(ctx)
		if cmdErr != nil || command == "" {
			command = name
		}
		if len(command) > maxCommandLength {
			command = command[:maxCommandLength] + "..."
		}

		jvms = append(jvms, JVMProcess{PID: proc.Pid, Command: command})
	}

	return jvms, nil
}

func isJavaProcess(name string) bool {
	base := strings.ToLower(strings.TrimSuffix(name, ".exe"))
	return base == "java" || base == "javaw"
}
