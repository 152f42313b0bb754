package binding

import (
	"path"
	"strings"
	"unicode"

	"github.com/tliron/commonlog"

	"wick-go/packages/compiler/src/config"
	"wick-go/packages/compiler/src/expression_parser"
	"wick-go/packages/compiler/src/output"
	"wick-go/packages/compiler/src/util"
	"wick-go/packages/core"
)

var log = commonlog.GetLogger("wick.compiler.binding")

// Reserved import sources that bind component variables instead of modules.
const (
	SourceModel   = "@model"
	SourceParent  = "@parent"
	SourceAPI     = "@api"
	SourceGlobals = "@globals"
)

// ComponentExtension is the file extension of component sources.
const ComponentExtension = ".wick"

// ComponentImport is a child component imported by the script
type ComponentImport struct {
	// Tag is the element name that instantiates the component
	Tag    string
	Local  string
	Source string
	Span   *util.ParseSourceSpan
}

// Build declares the binding variables of a parsed script and resolves the
// top level frame and every method frame. The returned root frame holds the
// top level statements without function declarations.
func Build(script *expression_parser.Script, cfg *config.CompilerConfig) (*Frame, util.ErrorList) {
	root := NewRootFrame()
	var errs util.ErrorList

	for _, decl := range script.Imports {
		declareImport(root, decl, &errs)
	}

	for _, stmt := range script.Statements {
		switch s := stmt.(type) {
		case *output.DeclareFunctionStmt:
			method := root.NewChild(s.Name)
			method.Params = s.Params
			method.Statements = s.Statements
			method.IsAsync = s.IsAsync
			method.IsWatched = strings.HasPrefix(s.Name, "$")
			method.Span = s.GetSourceSpan()
			if !root.AddBindingVariable(s.Name, s.NameSpan, core.BindingTypeMethod, "", 0) {
				errs.Add(s.NameSpan, "Identifier `%s` has already been declared", s.Name)
				continue
			}
			root.Registry().Get(s.Name).Method = method
		case *output.DeclareVarStmt:
			var flags core.VariableFlag
			if s.Value != nil {
				flags = core.VariableFlagWritten
			}
			if !root.AddBindingVariable(s.Name, s.NameSpan, core.BindingTypeInternal, "", flags) {
				errs.Add(s.NameSpan, "Identifier `%s` has already been declared", s.Name)
			}
			root.Statements = append(root.Statements, s)
		default:
			root.Statements = append(root.Statements, stmt)
		}
	}

	for _, exp := range script.Exports {
		v := root.Registry().Get(exp.Local)
		switch {
		case v == nil:
			errs.Add(exp.Span, "Cannot export undeclared variable `%s`", exp.Local)
		case v.IsMethod():
			errs.Add(exp.Span, "Cannot export method `%s`", exp.Local)
		default:
			v.Flags |= core.VariableFlagAllowExportToParent
			v.ExternalName = exp.Exported
		}
	}

	errs = append(errs, root.Resolve(cfg)...)
	for _, frame := range root.Frames() {
		errs = append(errs, frame.Resolve(cfg)...)
	}
	log.Debugf("declared %d binding variables, %d method frames", root.Registry().Len(), len(root.Frames()))
	return root, errs
}

func declareImport(root *Frame, decl *expression_parser.ImportDecl, errs *util.ErrorList) {
	var typ core.BindingType
	switch decl.Source {
	case SourceModel:
		typ = core.BindingTypeModel
	case SourceParent:
		typ = core.BindingTypeParent
	case SourceAPI:
		typ = core.BindingTypeAPI
	case SourceGlobals:
		typ = core.BindingTypeGlobal
	default:
		if path.Ext(decl.Source) == ComponentExtension {
			declareComponent(root, decl, errs)
			return
		}
		for _, spec := range decl.Specifiers {
			t := core.BindingTypeModuleMember
			if spec.Imported == "default" || spec.Imported == "*" {
				t = core.BindingTypeModule
			}
			if !root.AddBindingVariable(spec.Local, spec.Span, t, "", 0) {
				errs.Add(spec.Span, "Identifier `%s` has already been declared", spec.Local)
				continue
			}
			v := root.Registry().Get(spec.Local)
			v.Source = decl.Source
			v.Imported = spec.Imported
		}
		return
	}

	if len(decl.Specifiers) == 0 {
		errs.Add(decl.Span, "Import from `%s` must name at least one variable", decl.Source)
	}
	for _, spec := range decl.Specifiers {
		if spec.Imported == "default" || spec.Imported == "*" {
			errs.Add(spec.Span, "Only named imports are allowed from `%s`", decl.Source)
			continue
		}
		if !root.AddBindingVariable(spec.Local, spec.Span, typ, spec.Imported, 0) {
			errs.Add(spec.Span, "Identifier `%s` has already been declared", spec.Local)
		}
	}
}

func declareComponent(root *Frame, decl *expression_parser.ImportDecl, errs *util.ErrorList) {
	if len(decl.Specifiers) != 1 || decl.Specifiers[0].Imported != "default" {
		errs.Add(decl.Span, "Components must be imported with a single default import")
		return
	}
	spec := decl.Specifiers[0]
	tag := ComponentTag(spec.Local)
	for _, c := range root.Components {
		if c.Tag == tag {
			errs.Add(spec.Span, "Component `%s` has already been imported", spec.Local)
			return
		}
	}
	root.Components = append(root.Components, &ComponentImport{
		Tag:    tag,
		Local:  spec.Local,
		Source: decl.Source,
		Span:   spec.Span,
	})
}

// ComponentTag converts an imported component name to its element name,
// e.g. `UserCard` to `user-card`.
func ComponentTag(local string) string {
	var b strings.Builder
	for i, r := range local {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		} else if r == '_' {
			r = '-'
		}
		b.WriteRune(r)
	}
	return b.String()
}
