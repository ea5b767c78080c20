package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/corepm/internal/core/domain"
)

func sampleCore() *domain.Core {
	return &domain.Core{
		Name: domain.MustParseVLNV("acme:ip:uart:1.0"),
		Filesets: map[string]*domain.Fileset{
			"rtl": {
				FileType: "verilogSource",
				Files: []domain.File{
					{Name: "rtl/uart.v"},
					{Name: "rtl/defs.vh", IsIncludeFile: true},
					{Name: "rtl/pkg.sv", FileType: "systemVerilogSource"},
				},
				Depend: []string{"acme:ip:fifo:2.0"},
			},
			"tb": {
				FileType:    "verilogSource",
				LogicalName: "tb_lib",
				Files:       []domain.File{{Name: "tb/tb.v"}},
				Depend:      []string{"tool_icarus? (>=acme:sim:vpi_utils:1.0)"},
			},
			"vpi_src": {
				FileType: "cSource",
				Files:    []domain.File{{Name: "vpi/uart_vpi.c"}, {Name: "vpi/uart_vpi.h", IsIncludeFile: true}},
			},
		},
		Targets: map[string]*domain.Target{
			"default": {Filesets: []string{"rtl"}},
			"sim": {
				Filesets:    []string{"rtl", "is_toplevel? (tb)"},
				Parameters:  []string{"width=16", "tool_icarus? (trace)"},
				Toplevel:    "tool_icarus? (tb_icarus) !tool_icarus? (tb)",
				DefaultTool: "icarus",
				Tools: map[string]map[string]any{
					"icarus":    {"iverilog_options": []any{"-g2012"}},
					"verilator": {"mode": "cc"},
				},
				Hooks:    map[string][]string{domain.HookPreBuild: {"gen_regs"}},
				VPI:      []string{"uart_vpi"},
				Generate: []string{"regs"},
				Flags:    map[string]any{"tool": "icarus"},
			},
			"broken": {Filesets: []string{"missing"}, Parameters: []string{"nope"}},
		},
		Parameters: map[string]*domain.Parameter{
			"width": {Datatype: domain.DatatypeInt, Default: 8, Paramtype: "vlogparam"},
			"trace": {Datatype: domain.DatatypeBool, Default: true, Paramtype: "plusarg"},
		},
		Scripts: map[string]*domain.Script{
			"gen_regs": {Cmd: []string{"python3", "gen.py"}},
		},
		VPI: map[string]*domain.VPILibrary{
			"uart_vpi": {Filesets: []string{"vpi_src"}, Libs: []string{"-lm"}},
		},
		Generate: map[string]*domain.GenerateInstance{
			"regs": {Generator: "regmap", Parameters: map[string]any{"width": 32}},
		},
	}
}

func topFlags(target, tool string) domain.Flags {
	return domain.Flags{domain.FlagIsToplevel: true, domain.FlagTarget: target, domain.FlagTool: tool}
}

func TestCore_TargetName(t *testing.T) {
	t.Parallel()
	c := sampleCore()

	assert.Equal(t, "sim", c.TargetName(topFlags("sim", "")))
	assert.Equal(t, "default", c.TargetName(topFlags("", "")))
	assert.Equal(t, "default", c.TargetName(domain.Flags{domain.FlagTarget: "sim"}))
}

func TestCore_FilesForFlags(t *testing.T) {
	t.Parallel()
	c := sampleCore()

	files, err := c.FilesForFlags(topFlags("sim", "icarus"))
	require.NoError(t, err)
	require.Len(t, files, 4)
	assert.Equal(t, "verilogSource", files[0].FileType)
	assert.True(t, files[1].IsIncludeFile)
	assert.Equal(t, "systemVerilogSource", files[2].FileType)
	assert.Equal(t, domain.File{Name: "tb/tb.v", FileType: "verilogSource", LogicalName: "tb_lib"}, files[3])

	// Dependencies evaluate the default target whatever target was requested.
	files, err = c.FilesForFlags(domain.Flags{domain.FlagTarget: "sim"})
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestCore_FilesForFlags_Errors(t *testing.T) {
	t.Parallel()
	c := sampleCore()

	_, err := c.FilesForFlags(topFlags("synth", ""))
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnknownTarget.Error())

	_, err = c.FilesForFlags(topFlags("broken", ""))
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnknownFileset.Error())

	noDefault := &domain.Core{Name: domain.MustParseVLNV("acme:ip:empty:1"), Targets: map[string]*domain.Target{}}
	files, err := noDefault.FilesForFlags(domain.Flags{})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCore_DependsForFlags(t *testing.T) {
	t.Parallel()
	c := sampleCore()

	deps, err := c.DependsForFlags(topFlags("sim", "icarus"))
	require.NoError(t, err)
	require.Len(t, deps, 2)
	assert.Equal(t, "acme:ip:fifo:2.0", deps[0].String())
	assert.Equal(t, domain.RelationEQ, deps[0].Relation)
	assert.Equal(t, ">=acme:sim:vpi_utils:1.0", deps[1].Depend())

	deps, err = c.DependsForFlags(topFlags("sim", "verilator"))
	require.NoError(t, err)
	assert.Len(t, deps, 1)
}

func TestCore_ParametersForFlags(t *testing.T) {
	t.Parallel()
	c := sampleCore()

	params, err := c.ParametersForFlags(topFlags("sim", "icarus"))
	require.NoError(t, err)
	require.Len(t, params, 2)
	assert.Equal(t, 16, params["width"].Default)
	assert.Equal(t, true, params["trace"].Default)

	// Declarations are not mutated by overrides.
	assert.Equal(t, 8, c.Parameters["width"].Default)

	_, err = c.ParametersForFlags(topFlags("broken", ""))
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnknownParameter.Error())
}

func TestConvertParameterValue(t *testing.T) {
	t.Parallel()

	v, err := domain.ConvertParameterValue(domain.DatatypeReal, "1.5")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, v, 1e-9)

	v, err = domain.ConvertParameterValue(domain.DatatypeStr, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	_, err = domain.ConvertParameterValue(domain.DatatypeInt, "wide")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrInvalidParameterValue.Error())
}

func TestCore_ToolOptionsForFlags(t *testing.T) {
	t.Parallel()
	c := sampleCore()

	tool, opts, err := c.ToolOptionsForFlags(topFlags("sim", ""))
	require.NoError(t, err)
	assert.Equal(t, "icarus", tool)
	assert.Equal(t, map[string]any{"iverilog_options": []any{"-g2012"}}, opts)

	tool, opts, err = c.ToolOptionsForFlags(topFlags("sim", "verilator"))
	require.NoError(t, err)
	assert.Equal(t, "verilator", tool)
	assert.Equal(t, "cc", opts["mode"])
}

func TestCore_HooksVPIToplevelGenerate(t *testing.T) {
	t.Parallel()
	c := sampleCore()
	flags := topFlags("sim", "icarus")

	hooks, err := c.HooksForFlags(flags)
	require.NoError(t, err)
	require.Len(t, hooks[domain.HookPreBuild], 1)
	assert.Equal(t, "gen_regs", hooks[domain.HookPreBuild][0].Name)
	assert.Equal(t, []string{"python3", "gen.py"}, hooks[domain.HookPreBuild][0].Cmd)

	vpi, err := c.VPIForFlags(flags)
	require.NoError(t, err)
	require.Len(t, vpi, 1)
	assert.Equal(t, "uart_vpi", vpi[0].Name)
	assert.Len(t, vpi[0].SrcFiles, 1)
	assert.Len(t, vpi[0].IncludeFiles, 1)
	assert.Equal(t, []string{"-lm"}, vpi[0].Libs)

	top, err := c.ToplevelForFlags(flags)
	require.NoError(t, err)
	assert.Equal(t, "tb_icarus", top)

	top, err = c.ToplevelForFlags(topFlags("sim", "verilator"))
	require.NoError(t, err)
	assert.Equal(t, "tb", top)

	gens, err := c.GenerateForFlags(flags)
	require.NoError(t, err)
	require.Len(t, gens, 1)
	assert.Equal(t, "regs", gens[0].Name)
	assert.Equal(t, "regmap", gens[0].Generator)
}

func TestCore_WithTargetFlags(t *testing.T) {
	t.Parallel()
	c := sampleCore()

	flags := c.WithTargetFlags(topFlags("sim", ""))
	assert.Equal(t, "", flags.Tool(), "explicit empty tool wins")

	flags = c.WithTargetFlags(domain.Flags{domain.FlagIsToplevel: true, domain.FlagTarget: "sim"})
	assert.Equal(t, "icarus", flags.Tool())
}

func TestFlags_Active(t *testing.T) {
	t.Parallel()

	f := domain.Flags{"is_toplevel": true, "tool": "icarus", "target": "sim", "debug": false, "empty": ""}
	assert.Equal(t, map[string]bool{"is_toplevel": true, "tool_icarus": true, "target_sim": true}, f.Active())

	name, value := domain.ParseFlag("trace")
	assert.Equal(t, "trace", name)
	assert.Equal(t, true, value)
	name, value = domain.ParseFlag("mode=fast")
	assert.Equal(t, "mode", name)
	assert.Equal(t, "fast", value)
	_, value = domain.ParseFlag("debug=false")
	assert.Equal(t, false, value)
}

func TestValidateFileType(t *testing.T) {
	t.Parallel()

	require.NoError(t, domain.ValidateFileType("verilogSource-2005"))
	require.NoError(t, domain.ValidateFileType("vhdlSource-2008"))
	require.NoError(t, domain.ValidateFileType(""))
	err := domain.ValidateFileType("cobolSource")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnknownFileType.Error())
}
