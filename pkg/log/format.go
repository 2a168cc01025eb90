// Copyright 2024 The Remote Docker Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	redString    = color.New(color.FgHiRed).SprintfFunc()
	greenString  = color.New(color.FgGreen).SprintfFunc()
	yellowString = color.New(color.FgHiYellow).SprintfFunc()
	blueString   = color.New(color.FgHiBlue).SprintfFunc()

	errorSymbol       = color.New(color.BgHiRed, color.FgBlack).Sprint(" x ")
	successSymbol     = color.New(color.BgGreen, color.FgBlack).Sprint(" ✓ ")
	informationSymbol = color.New(color.BgHiBlue, color.FgBlack).Sprint(" i ")
)

// Green writes a line in green
func Green(format string, args ...interface{}) {
	fmt.Println(greenString(format, args...))
	if log.file != nil {
		log.file.Infof(format, args...)
	}
}

// Yellow writes a line in yellow
func Yellow(format string, args ...interface{}) {
	fmt.Println(yellowString(format, args...))
	if log.file != nil {
		log.file.Warnf(format, args...)
	}
}

// Red writes a line in red
func Red(format string, args ...interface{}) {
	fmt.Println(redString(format, args...))
	if log.file != nil {
		log.file.Errorf(format, args...)
	}
}

// Success prints a message with the success symbol first
func Success(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", successSymbol, greenString(format, args...))
	if log.file != nil {
		log.file.Infof(format, args...)
	}
}

// Information prints a message with the information symbol first
func Information(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", informationSymbol, blueString(format, args...))
	if log.file != nil {
		log.file.Infof(format, args...)
	}
}

// Fail prints a message with the error symbol first
func Fail(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", errorSymbol, redString(format, args...))
	if log.file != nil {
		log.file.Errorf(format, args...)
	}
}

// Hint prints a hint in blue, without a symbol
func Hint(format string, args ...interface{}) {
	fmt.Println(blueString(format, args...))
	if log.file != nil {
		log.file.Infof(format, args...)
	}
}
