package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/gen"
	assert "github.com/stretchr/testify/require"
)

const source = "export type User = {\n  name: string\n  age?: number\n}\n"

type result struct {
	stdout string
	err    error
}

func run(t *testing.T, dir string, stdin string, args ...string) result {
	var stdout bytes.Buffer

	err := Run(Settings{
		WorkingDir: dir,
		Stdin:      strings.NewReader(stdin),
		Stdout:     &stdout,
		Stderr:     io.Discard,
	}, args)

	return result{stdout: stdout.String(), err: err}
}

func writeFile(t *testing.T, dir, name, content string) {
	assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "types.ts", source)

	res := run(t, dir, "", "types.ts", "--target", "zod")
	assert.NoError(t, res.err)
	assert.Contains(t, res.stdout, "export const User = z.object(")
}

func TestGenerateFromStdin(t *testing.T) {
	res := run(t, t.TempDir(), source, "-", "-t", "typescript")
	assert.NoError(t, res.err)
	assert.Contains(t, res.stdout, "export type User = {")
}

func TestGenerateToFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "types.ts", source)

	res := run(t, dir, "", "types.ts", "-t", "sql", "-o", "out/schema.sql")
	assert.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	data, err := os.ReadFile(filepath.Join(dir, "out", "schema.sql"))
	assert.NoError(t, err)
	assert.Contains(t, string(data), "CREATE TABLE \"user\" (")
}

func TestGenerateUsesConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src.ts", source)
	writeFile(t, dir, "typeshift.yaml", "version: 1\ninput: src.ts\ntarget: go\ngo:\n  package: models\n")

	res := run(t, dir, "")
	assert.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "package models\n"))
	assert.Contains(t, res.stdout, "type User struct")
}

func TestGenerateErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "types.ts", source)
	writeFile(t, dir, "broken.ts", "export type User = {")

	res := run(t, dir, "", "types.ts", "-t", "flow")
	assert.True(t, errors.Is(res.err, gen.ErrUnknownTarget))

	res = run(t, dir, "", "broken.ts", "-t", "zod")
	assert.ErrorContains(t, res.err, `failed to generate zod from "broken.ts"`)
	assert.Empty(t, res.stdout)

	res = run(t, dir, "", "missing.ts")
	assert.ErrorContains(t, res.err, `failed to read input file "missing.ts"`)
}

func TestTargets(t *testing.T) {
	res := run(t, t.TempDir(), "", "targets")
	assert.NoError(t, res.err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	assert.Len(t, lines, len(gen.Targets))
	assert.Equal(t, "typebox", lines[0])
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "types.ts", source)

	res := run(t, dir, "", "check", "types.ts")
	assert.NoError(t, res.err)
	assert.Equal(t, "ok: 1 types\n", res.stdout)

	res = run(t, dir, "", "check", "types.ts", "--path", "User.name")
	assert.NoError(t, res.err)
	assert.Equal(t, "ok: User.name\n", res.stdout)

	res = run(t, dir, "", "check", "types.ts", "--path", "User.email")
	assert.ErrorContains(t, res.err, `could not resolve property "email"`)
}

func TestCheckReportsLostNodes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "types.ts", "type A = { x: T extends string ? 1 : 2 }")

	res := run(t, dir, "", "check", "types.ts")
	assert.ErrorContains(t, res.err, "JSON Schema round trip changed the declarations")
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "typeshift.yaml", "version: 3\n")

	res := run(t, dir, "", "targets")
	assert.ErrorContains(t, res.err, "unsupported config version 3")
}

func TestInvalidLogLevel(t *testing.T) {
	res := run(t, t.TempDir(), "", "targets", "--log-level", "loud")
	assert.ErrorContains(t, res.err, "invalid log level")
}
