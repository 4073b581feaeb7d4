// Command brainc compiles a Brain source file to a native executable by
// emitting LLVM IR and shelling out to clang+lld (spec §6 "driver
// surface"). Code generation itself lives in internal/codegen; this
// package is the five-phase CLI wrapper around it.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brain-lang/brainc/internal/codegen"
	"github.com/brain-lang/brainc/internal/frontend"
	"github.com/brain-lang/brainc/internal/module"
)

var (
	flagOutput string
	flagTarget string
	flagDebug  bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brainc <input.brn> [output]",
		Short: "Compile a Brain source file to a native executable",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runCompile,
	}
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output base name (default: input name without .brn)")
	cmd.Flags().StringVarP(&flagTarget, "target", "T", "", "target OS: linux, windows, darwin (default: host OS)")
	cmd.Flags().BoolVar(&flagDebug, "debug", false, "emit verbose phase/AST diagnostics")
	return cmd
}

func newLogger() *zap.SugaredLogger {
	if !flagDebug {
		return zap.NewNop().Sugar()
	}
	cfg := zap.NewDevelopmentConfig()
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

func runCompile(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync() //nolint:errcheck

	inputFile := args[0]
	outputFile := flagOutput
	if len(args) > 1 {
		outputFile = args[1]
	}
	if outputFile == "" {
		outputFile = strings.TrimSuffix(inputFile, filepath.Ext(inputFile))
	}

	fmt.Printf("Compiling %s...\n", inputFile)

	fmt.Println("  [1/5] Reading source...")
	source, err := os.ReadFile(inputFile)
	if err != nil {
		return errors.Wrapf(err, "could not read file %q", inputFile)
	}

	fmt.Println("  [2/5] Lexing and parsing...")
	prog, err := frontend.Parse(inputFile, string(source))
	if err != nil {
		return errors.Wrap(err, "parse error")
	}

	fmt.Println("  [3/5] Resolving imports...")
	cache := module.NewCache([]module.File{{Path: inputFile, Program: prog}})
	resolved, err := cache.Resolve(inputFile)
	if err != nil {
		return errors.Wrap(err, "import resolution error")
	}

	fmt.Println("  [4/5] Code generation...")
	target, err := resolveTarget(flagTarget)
	if err != nil {
		return err
	}
	gen := codegen.New(target, log)
	ir, err := gen.Generate(resolved)
	if err != nil {
		return errors.Wrap(err, "codegen error")
	}

	if !strings.Contains(ir, "define i32 @main()") {
		return errors.Errorf(
			"no 'main' function found in %q\n  Brain programs must define a 'fn main()' entry point.",
			inputFile)
	}

	fmt.Println("  [5/5] Linking...")
	llFile := outputFile + ".ll"
	outputExe := executableName(outputFile, target)
	if err := os.WriteFile(llFile, []byte(ir), 0o644); err != nil {
		return errors.Wrapf(err, "writing LLVM IR to %q", llFile)
	}
	fmt.Printf("  Generated LLVM IR: %s\n", llFile)
	fmt.Printf("  Linking to executable: %s\n", outputExe)

	return link(llFile, outputExe, target)
}

func resolveTarget(name string) (codegen.Target, error) {
	switch strings.ToLower(name) {
	case "":
		return hostTarget(), nil
	case "linux":
		return codegen.Linux, nil
	case "windows":
		return codegen.Windows, nil
	case "darwin", "macos":
		return codegen.Darwin, nil
	}
	return 0, errors.Errorf("unknown target %q (want linux, windows, or darwin)", name)
}

func hostTarget() codegen.Target {
	switch runtime.GOOS {
	case "windows":
		return codegen.Windows
	case "darwin":
		return codegen.Darwin
	default:
		return codegen.Linux
	}
}

func executableName(base string, target codegen.Target) string {
	if target == codegen.Windows {
		return base + ".exe"
	}
	return base
}

// link shells out to clang, matching the per-OS flags spec.md §6 lists. A
// missing clang binary is not a fatal error: the .ll file has already been
// written, so we print the manual compile command instead (supplemented
// from original_source/src/main.rs, a strict superset of spec.md's driver
// contract).
func link(llFile, outputExe string, target codegen.Target) error {
	args := []string{llFile, "-o", outputExe, "-Wno-override-module"}
	switch target {
	case codegen.Windows:
		args = append(args, "-fuse-ld=lld", "-lkernel32", "-Wl,/subsystem:console")
	case codegen.Darwin:
		args = append(args, "-nostdlib", "-lSystem")
	default:
		args = append(args, "-static", "-nostdlib")
	}

	out, err := exec.Command("clang", args...).CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			fmt.Printf("clang not found; LLVM IR saved to: %s\n", llFile)
			fmt.Printf("You can compile manually with: clang %s\n", strings.Join(args, " "))
			return nil
		}
		fmt.Println("Error during linking:")
		fmt.Println(string(out))
		return errors.Wrap(err, "clang invocation failed")
	}
	fmt.Printf("Successfully compiled to: %s\n", outputExe)
	return nil
}
