/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package jvm

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// excerptFile returns the lines of path from line-contextLines through
// line+contextLines, with the target line prefixed by '>'.
func excerptFile(path string, line, contextLines int) (string, error) {
	if line < 1 {
		return "", fmt.Errorf("invalid line number %d", line)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	first := line - contextLines
	last := line + contextLines

	var b strings.Builder
	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		n++
		if n < first {
			continue
		}
		if n > last {
			break
		}
		if n == line {
			b.WriteByte('>')
		}
		b.WriteString(scanner.Text())
		if n != last {
			b.WriteByte('\n')
		}
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return "", fmt.Errorf("failed to read source file: %w", scanErr)
	}
	if n < line {
		return "", fmt.Errorf("source file %s has only %d lines, want line %d", path, n, line)
	}

	return b.String(), nil
}
