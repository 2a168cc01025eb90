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
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

type logger struct {
	out  *logrus.Logger
	file *logrus.Logger
}

var log = &logger{
	out: logrus.New(),
}

// Init configures the logger for the package to use. The console logger
// honors the requested level; the file logger always captures debug output
// into a rolling log under dir.
func Init(level logrus.Level, dir string) {
	log.out.SetOutput(os.Stdout)
	log.out.SetLevel(level)
	log.out.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	if dir == "" {
		return
	}

	log.file = logrus.New()
	log.file.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	log.file.SetOutput(getRollingLog(filepath.Join(dir, "rd.log")))
	log.file.SetLevel(logrus.DebugLevel)
}

func getRollingLog(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1, // megabytes
		MaxBackups: 10,
		MaxAge:     28, // days
		Compress:   true,
	}
}

// SetLevel sets the level of the console logger
func SetLevel(level string) {
	l, err := logrus.ParseLevel(level)
	if err == nil {
		log.out.SetLevel(l)
	}
}

// Debug writes a debug-level log
func Debug(args ...interface{}) {
	log.out.Debug(args...)
	if log.file != nil {
		log.file.Debug(args...)
	}
}

// Debugf writes a debug-level log with a format
func Debugf(format string, args ...interface{}) {
	log.out.Debugf(format, args...)
	if log.file != nil {
		log.file.Debugf(format, args...)
	}
}

// Info writes a info-level log
func Info(args ...interface{}) {
	log.out.Info(args...)
	if log.file != nil {
		log.file.Info(args...)
	}
}

// Infof writes a info-level log with a format
func Infof(format string, args ...interface{}) {
	log.out.Infof(format, args...)
	if log.file != nil {
		log.file.Infof(format, args...)
	}
}

// Warning writes a warning-level log
func Warning(args ...interface{}) {
	log.out.Warn(args...)
	if log.file != nil {
		log.file.Warn(args...)
	}
}

// Warningf writes a warning-level log with a format
func Warningf(format string, args ...interface{}) {
	log.out.Warnf(format, args...)
	if log.file != nil {
		log.file.Warnf(format, args...)
	}
}

// Error writes a error-level log
func Error(args ...interface{}) {
	log.out.Error(args...)
	if log.file != nil {
		log.file.Error(args...)
	}
}

// Errorf writes a error-level log with a format
func Errorf(format string, args ...interface{}) {
	log.out.Errorf(format, args...)
	if log.file != nil {
		log.file.Errorf(format, args...)
	}
}

// Fatalf writes a error-level log with a format and exits
func Fatalf(format string, args ...interface{}) {
	if log.file != nil {
		log.file.Errorf(format, args...)
	}
	log.out.Fatalf(format, args...)
}

// Println writes a line to stdout and to the file logger
func Println(args ...interface{}) {
	if log.file != nil {
		log.file.Info(args...)
	}
	fmt.Println(args...)
}
