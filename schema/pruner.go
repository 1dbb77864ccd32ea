// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package schema

// pruner marks everything reachable from the roots of the rules, then
// copies what was marked into a new schema.
type pruner struct {
	schema *Schema
	rules  *PruningRules
	marks  *MarkSet

	// ProtoType and ProtoMember values waiting to be visited.
	queue         []any
	optionsMarked map[ProtoType]bool
}

func newPruner(schema *Schema, rules *PruningRules) *pruner {
	return &pruner{
		schema:        schema,
		rules:         rules,
		marks:         NewMarkSet(rules),
		optionsMarked: map[ProtoType]bool{},
	}
}

// markRoots roots every type and service the rules include, and every
// included member of the others.
func (p *pruner) markRoots() error {
	for _, file := range p.schema.files {
		var err error
		file.Walk(func(t Type) bool {
			if _, ok := t.(*EnclosingType); ok {
				return true
			}
			err = p.markRoot(t.Type(), typeMembers(t))
			return err == nil
		})
		if err != nil {
			return err
		}
		for _, service := range file.services {
			var members []string
			for _, rpc := range service.rpcs {
				members = append(members, rpc.name)
			}
			if err := p.markRoot(service.typ, members); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *pruner) markRoot(t ProtoType, members []string) error {
	if p.rules.Policy(t.String()) == PolicyIncluded {
		if err := p.marks.RootType(t); err != nil {
			return err
		}
		p.queue = append(p.queue, t)
		return nil
	}
	for _, name := range members {
		member := NewProtoMember(t, name)
		if p.rules.Policy(member.String()) != PolicyIncluded {
			continue
		}
		if err := p.marks.RootMember(member); err != nil {
			return err
		}
		p.queue = append(p.queue, member)
	}
	return nil
}

func typeMembers(t Type) []string {
	var members []string
	switch t := t.(type) {
	case *MessageType:
		for _, field := range t.FieldsAndOneOfFields() {
			members = append(members, field.name)
		}
		for _, field := range t.extensionFields {
			members = append(members, field.QualifiedName())
		}
	case *EnumType:
		for _, c := range t.constants {
			members = append(members, c.name)
		}
	}
	return members
}

// markReachable visits the queue until nothing new is marked.
func (p *pruner) markReachable() {
	for len(p.queue) > 0 {
		next := p.queue[0]
		p.queue = p.queue[1:]
		switch next := next.(type) {
		case ProtoType:
			p.visitType(next)
		case ProtoMember:
			p.visitMember(next)
		}
	}
}

// markFileOptions marks the options of every file that keeps a type, service
// or extend. Those options can reach declarations in files not yet kept, so
// it repeats until no file is added.
func (p *pruner) markFileOptions() {
	marked := map[string]bool{}
	for {
		added := false
		for _, file := range p.schema.files {
			if marked[file.Path()] || file.retainAll(p.marks) == nil {
				continue
			}
			marked[file.Path()] = true
			added = true
			p.markOptions(file.options)
		}
		if !added {
			return
		}
		p.markReachable()
	}
}

// visitType visits every kept member of t.
func (p *pruner) visitType(t ProtoType) {
	p.markTypeOptions(t)
	if service := p.schema.services[t]; service != nil {
		for _, rpc := range service.rpcs {
			if p.marks.ContainsMember(NewProtoMember(t, rpc.name)) {
				p.visitRPC(rpc)
			}
		}
		return
	}
	switch declared := p.schema.types[t].(type) {
	case *MessageType:
		for _, field := range declared.FieldsAndOneOfFields() {
			if p.marks.ContainsMember(field.Member(t)) {
				p.visitField(field)
			}
		}
		for _, field := range declared.extensionFields {
			if p.marks.ContainsMember(field.Member(t)) {
				p.visitField(field)
			}
		}
	case *EnumType:
		for _, c := range declared.constants {
			if p.marks.ContainsMember(NewProtoMember(t, c.name)) {
				p.markOptions(c.options)
			}
		}
	}
}

// visitMember visits a member that was marked on its own.
func (p *pruner) visitMember(member ProtoMember) {
	p.markTypeOptions(member.Type)
	if service := p.schema.services[member.Type]; service != nil {
		if rpc := service.RPC(member.Member); rpc != nil {
			p.visitRPC(rpc)
		}
		return
	}
	switch declared := p.schema.types[member.Type].(type) {
	case *MessageType:
		field := declared.Field(member.Member)
		if field == nil {
			field = declared.ExtensionField(member.Member)
		}
		if field != nil {
			p.visitField(field)
		}
	case *EnumType:
		if c := declared.Constant(member.Member); c != nil {
			p.markOptions(c.options)
		}
	}
}

// markTypeOptions marks the options of the type or service t and, for
// messages, of its oneofs. It runs once per type.
func (p *pruner) markTypeOptions(t ProtoType) {
	if p.optionsMarked[t] {
		return
	}
	p.optionsMarked[t] = true
	if service := p.schema.services[t]; service != nil {
		p.markOptions(service.options)
		return
	}
	declared := p.schema.types[t]
	if declared == nil {
		return
	}
	p.markOptions(declared.Options())
	if m, ok := declared.(*MessageType); ok {
		for _, oneOf := range m.oneOfs {
			p.markOptions(oneOf.options)
		}
	}
}

func (p *pruner) visitField(field *Field) {
	p.markType(field.typ)
	p.markOptions(field.options)
}

func (p *pruner) visitRPC(rpc *RPC) {
	p.markType(rpc.requestType)
	p.markType(rpc.responseType)
	p.markOptions(rpc.options)
}

// markType marks t wholesale, or the key and value types of a map.
func (p *pruner) markType(t ProtoType) {
	if t.IsMap() {
		p.markType(t.KeyType())
		p.markType(t.ValueType())
		return
	}
	if p.marks.MarkType(t) {
		p.queue = append(p.queue, t)
	}
}

// markOptions marks the fields that options set. Message types reached
// through option values are kept with only the fields that are set, while
// enums are kept whole.
func (p *pruner) markOptions(o *Options) {
	for _, e := range o.entries {
		p.markOptionEntry(e)
	}
}

func (p *pruner) markOptionEntry(e OptionEntry) {
	field := p.schema.Field(e.Member)
	if p.marks.MarkMember(e.Member) {
		p.markTypeOptions(e.Member.Type)
		if field != nil {
			p.markOptions(field.options)
		}
	}
	if field != nil {
		p.markOptionType(field.typ)
	}
	var values []any
	if list, ok := e.Value.([]any); ok {
		values = list
	} else {
		values = []any{e.Value}
	}
	for _, v := range values {
		if nested, ok := v.(OptionValueMap); ok {
			for _, ne := range nested {
				p.markOptionEntry(ne)
			}
		}
	}
}

func (p *pruner) markOptionType(t ProtoType) {
	switch declared := p.schema.types[t].(type) {
	case *MessageType:
		if p.marks.markPresent(t) {
			p.markTypeOptions(t)
		}
	case *EnumType:
		p.markType(declared.typ)
	}
}

// sweep copies what was marked into a new schema. Files with nothing left
// are dropped, along with imports of them.
func (p *pruner) sweep() *Schema {
	var files []*ProtoFile
	paths := map[string]bool{}
	for _, file := range p.schema.files {
		if retained := file.retainAll(p.marks); retained != nil {
			files = append(files, retained)
			paths[retained.Path()] = true
		}
	}
	for _, file := range files {
		file.retainImports(paths)
	}
	return newSchema(files)
}
