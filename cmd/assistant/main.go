// Copyright 2026 SliceLine
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"sliceline/assistant/assistant"
)

func main() {
	assistant.Run()
}
