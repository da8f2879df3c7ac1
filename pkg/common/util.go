package common

import (
	"os"
	"strings"
)

func IsDevelopment() bool {
	return os.Getenv(EnvKeyGoEnv) == "development"
}

func IsProduction() bool {
	return os.Getenv(EnvKeyGoEnv) == "production"
}

func Mapper[T any, R any](items []T, mapFn func(T) R) []R {
	mapped := make([]R, len(items))
	for i := range len(items) {
		mapped[i] = mapFn(items[i])
	}
	return mapped
}

func Reducer[T any, R any](items []T, reduceFn func(R, T) R, initAcc R) R {
	finalAcc := initAcc
	for i := range len(items) {
		finalAcc = reduceFn(finalAcc, items[i])
	}
	return finalAcc
}

// Reverse returns a new slice with the items in reverse order, items is untouched.
func Reverse[T any](items []T) []T {
	reversed := make([]T, len(items))
	for i := range len(items) {
		reversed[len(items)-1-i] = items[i]
	}
	return reversed
}

// SplitCSV splits a comma separated env value, dropping blanks.
func SplitCSV(value string) []string {
	return Reducer(strings.Split(value, ","),
		func(acc []string, part string) []string {
			if part = strings.TrimSpace(part); part != "" {
				acc = append(acc, part)
			}
			return acc
		},
		[]string{},
	)
}
