package evaluator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Loaded proto descriptors, shared process-wide.
var (
	protoRegistry   = make(map[string]*desc.FileDescriptor)
	protoRegistryMu sync.RWMutex
)

// GrpcConn wraps a client connection as a runtime value.
type GrpcConn struct {
	Conn *grpc.ClientConn
}

func (c *GrpcConn) Type() ValueType { return GRPC_CONN_VALUE }
func (c *GrpcConn) Inspect() string {
	if c.Conn == nil {
		return "GrpcConn(closed)"
	}
	return fmt.Sprintf("GrpcConn(%s)", c.Conn.Target())
}

// GrpcBuiltins is the gRPC native surface: proto loading, connections and
// unary invocation. Every entry reports failures as an Outcome rather than
// a runtime fault, so scripts can match on them.
func GrpcBuiltins() map[string]*Builtin {
	return map[string]*Builtin{
		"proto_load":   {Name: "proto_load", Arity: 1, Fn: builtinProtoLoad},
		"proto_encode": {Name: "proto_encode", Arity: 2, Fn: builtinProtoEncode},
		"proto_decode": {Name: "proto_decode", Arity: 2, Fn: builtinProtoDecode},
		"grpc_connect": {Name: "grpc_connect", Arity: 1, Fn: builtinGrpcConnect},
		"grpc_close":   {Name: "grpc_close", Arity: 1, Fn: builtinGrpcClose},
		"grpc_invoke":  {Name: "grpc_invoke", Arity: 3, Fn: builtinGrpcInvoke},
	}
}

func makeOk(v Value) Value    { return &Outcome{Ok: true, Value: v} }
func makeErr(msg string) Value { return &Outcome{Ok: false, Value: &Text{Value: msg}} }

func textArg(v Value, fn string) (string, Value) {
	t, ok := v.(*Text)
	if !ok {
		return "", newError(TypeMismatch, "%s expects Text, got %s", fn, v.Type())
	}
	return t.Value, nil
}

// proto_load(path) -> Outcome
func builtinProtoLoad(e *Evaluator, args []Value) Value {
	path, errv := textArg(args[0], "proto_load")
	if errv != nil {
		return errv
	}

	parser := protoparse.Parser{ImportPaths: []string{"."}}
	fds, err := parser.ParseFiles(path)
	if err != nil {
		return makeErr("failed to parse proto: " + err.Error())
	}

	protoRegistryMu.Lock()
	defer protoRegistryMu.Unlock()
	for _, fd := range fds {
		protoRegistry[fd.GetName()] = fd
	}
	return makeOk(UNIT)
}

// grpc_connect(target) -> Outcome
func builtinGrpcConnect(e *Evaluator, args []Value) Value {
	target, errv := textArg(args[0], "grpc_connect")
	if errv != nil {
		return errv
	}
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return makeErr(err.Error())
	}
	return makeOk(&GrpcConn{Conn: conn})
}

// grpc_close(conn) -> Outcome
func builtinGrpcClose(e *Evaluator, args []Value) Value {
	c, ok := args[0].(*GrpcConn)
	if !ok {
		return newError(TypeMismatch, "grpc_close expects a GrpcConn, got %s", args[0].Type())
	}
	if c.Conn != nil {
		err := c.Conn.Close()
		c.Conn = nil
		if err != nil {
			return makeErr(err.Error())
		}
	}
	return makeOk(UNIT)
}

// grpc_invoke(conn, "package.Service/Method", request) -> Outcome
func builtinGrpcInvoke(e *Evaluator, args []Value) Value {
	c, ok := args[0].(*GrpcConn)
	if !ok || c.Conn == nil {
		return newError(TypeMismatch, "grpc_invoke expects an open GrpcConn")
	}
	methodPath, errv := textArg(args[1], "grpc_invoke")
	if errv != nil {
		return errv
	}

	md, err := findMethodDescriptor(methodPath)
	if err != nil {
		return makeErr(err.Error())
	}

	reqMsg := dynamic.NewMessage(md.GetInputType())
	if err := valueToDynamicMessage(args[2], reqMsg); err != nil {
		return makeErr("failed to build request: " + err.Error())
	}
	respMsg := dynamic.NewMessage(md.GetOutputType())

	if !strings.HasPrefix(methodPath, "/") {
		methodPath = "/" + methodPath
	}
	ctx := e.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if err := c.Conn.Invoke(ctx, methodPath, reqMsg, respMsg); err != nil {
		return makeErr("RPC failed: " + err.Error())
	}
	return makeOk(dynamicMessageToValue(respMsg))
}

// proto_encode(messageName, data) -> Outcome with a U8 array payload
func builtinProtoEncode(e *Evaluator, args []Value) Value {
	msgName, errv := textArg(args[0], "proto_encode")
	if errv != nil {
		return errv
	}
	md, err := findMessageDescriptor(msgName)
	if err != nil {
		return makeErr(err.Error())
	}

	msg := dynamic.NewMessage(md)
	if err := valueToDynamicMessage(args[1], msg); err != nil {
		return makeErr("encoding error: " + err.Error())
	}
	raw, err := msg.Marshal()
	if err != nil {
		return makeErr("marshal error: " + err.Error())
	}
	return makeOk(bytesToValue(raw))
}

// proto_decode(messageName, bytes) -> Outcome
func builtinProtoDecode(e *Evaluator, args []Value) Value {
	msgName, errv := textArg(args[0], "proto_decode")
	if errv != nil {
		return errv
	}
	raw, errv := valueToBytes(args[1])
	if errv != nil {
		return errv
	}
	md, err := findMessageDescriptor(msgName)
	if err != nil {
		return makeErr(err.Error())
	}

	msg := dynamic.NewMessage(md)
	if err := msg.Unmarshal(raw); err != nil {
		return makeErr("unmarshal error: " + err.Error())
	}
	return makeOk(dynamicMessageToValue(msg))
}

func findMethodDescriptor(path string) (*desc.MethodDescriptor, error) {
	slash := strings.LastIndexByte(path, '/')
	if slash < 0 {
		return nil, fmt.Errorf("invalid method path %q, expected 'package.Service/Method'", path)
	}
	serviceName, methodName := path[:slash], path[slash+1:]

	protoRegistryMu.RLock()
	defer protoRegistryMu.RUnlock()
	for _, fd := range protoRegistry {
		if svc := fd.FindService(serviceName); svc != nil {
			if m := svc.FindMethodByName(methodName); m != nil {
				return m, nil
			}
		}
	}
	return nil, fmt.Errorf("method %q not found (did you load the proto?)", path)
}

func findMessageDescriptor(name string) (*desc.MessageDescriptor, error) {
	protoRegistryMu.RLock()
	defer protoRegistryMu.RUnlock()
	for _, fd := range protoRegistry {
		if m := fd.FindMessage(name); m != nil {
			return m, nil
		}
	}
	return nil, fmt.Errorf("message type %q not found", name)
}

// valueToDynamicMessage populates a dynamic message from a struct instance.
func valueToDynamicMessage(v Value, msg *dynamic.Message) error {
	st, ok := v.(*StructInstance)
	if !ok {
		return fmt.Errorf("expected a struct value, got %s", v.Type())
	}

	for i, name := range st.Names {
		fd := msg.GetMessageDescriptor().FindFieldByName(name)
		if fd == nil {
			// Unknown fields are dropped, matching proto3 semantics.
			continue
		}
		pv, err := toProtoValue(st.Fields[i], fd)
		if err != nil {
			return fmt.Errorf("field %s: %v", name, err)
		}
		if pv != nil {
			msg.SetField(fd, pv)
		}
	}
	return nil
}

func toProtoValue(v Value, fd *desc.FieldDescriptor) (interface{}, error) {
	if fd.IsRepeated() {
		var elems []Value
		switch v := v.(type) {
		case *Array:
			elems = v.Elements
		case *Sequence:
			elems = v.Elements
		default:
			return nil, fmt.Errorf("expected an array for repeated field")
		}
		slice := make([]interface{}, 0, len(elems))
		for _, item := range elems {
			pv, err := toProtoSingleValue(item, fd)
			if err != nil {
				return nil, err
			}
			slice = append(slice, pv)
		}
		return slice, nil
	}
	return toProtoSingleValue(v, fd)
}

func toProtoSingleValue(v Value, fd *desc.FieldDescriptor) (interface{}, error) {
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32, descriptorpb.FieldDescriptorProto_TYPE_SINT32, descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		if i, ok := v.(*Integer); ok {
			return int32(i.Value), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_INT64, descriptorpb.FieldDescriptorProto_TYPE_SINT64, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		if i, ok := v.(*Integer); ok {
			return i.Value, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32, descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		if i, ok := v.(*Integer); ok {
			return uint32(i.Value), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64, descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		if i, ok := v.(*Integer); ok {
			return uint64(i.Value), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		if f, ok := v.(*Float); ok {
			return float32(f.Value), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		if f, ok := v.(*Float); ok {
			return f.Value, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		if b, ok := v.(*Boolean); ok {
			return b.Value, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		if t, ok := v.(*Text); ok {
			return t.Value, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		raw, errv := valueToBytes(v)
		if errv == nil {
			return raw, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		msg := dynamic.NewMessage(fd.GetMessageType())
		if err := valueToDynamicMessage(v, msg); err != nil {
			return nil, err
		}
		return msg, nil
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		if i, ok := v.(*Integer); ok {
			return int32(i.Value), nil
		}
		if t, ok := v.(*Text); ok {
			if ev := fd.GetEnumType().FindValueByName(t.Value); ev != nil {
				return ev.GetNumber(), nil
			}
		}
	}
	return nil, fmt.Errorf("cannot convert %s to proto %v", v.Type(), fd.GetType())
}

// dynamicMessageToValue renders a response as an anonymous struct instance
// keyed by the message's field names.
func dynamicMessageToValue(msg *dynamic.Message) Value {
	descs := msg.GetMessageDescriptor().GetFields()
	names := make([]string, 0, len(descs))
	fields := make([]Value, 0, len(descs))
	for _, fd := range descs {
		names = append(names, fd.GetName())
		fields = append(fields, fromProtoValue(msg.GetField(fd), fd))
	}
	return &StructInstance{TypeName: msg.GetMessageDescriptor().GetName(), Names: names, Fields: fields}
}

func fromProtoValue(val interface{}, fd *desc.FieldDescriptor) Value {
	if val == nil {
		return UNIT
	}
	if fd.IsRepeated() {
		slice, ok := val.([]interface{})
		if !ok {
			return &Array{}
		}
		elems := make([]Value, 0, len(slice))
		for _, item := range slice {
			elems = append(elems, fromProtoSingleValue(item))
		}
		return &Array{Elements: elems}
	}
	return fromProtoSingleValue(val)
}

func fromProtoSingleValue(val interface{}) Value {
	switch v := val.(type) {
	case int32:
		return NewInteger(I32, int64(v))
	case int64:
		return NewInteger(I64, v)
	case uint32:
		return NewInteger(U32, int64(v))
	case uint64:
		return NewInteger(U64, int64(v))
	case float32:
		return &Float{Kind: F32, Value: float64(v)}
	case float64:
		return &Float{Kind: F64, Value: v}
	case bool:
		return nativeBoolToBoolean(v)
	case string:
		return &Text{Value: v}
	case []byte:
		return bytesToValue(v)
	case *dynamic.Message:
		return dynamicMessageToValue(v)
	case int:
		return NewInteger(I64, int64(v))
	}
	return UNIT
}

// Wire bytes travel as arrays of u8, the closest native shape.
func bytesToValue(raw []byte) Value {
	elems := make([]Value, len(raw))
	for i, b := range raw {
		elems[i] = NewInteger(U8, int64(b))
	}
	return &Array{Elements: elems}
}

func valueToBytes(v Value) ([]byte, Value) {
	arr, ok := v.(*Array)
	if !ok {
		return nil, newError(TypeMismatch, "expected a u8 array, got %s", v.Type())
	}
	raw := make([]byte, len(arr.Elements))
	for i, el := range arr.Elements {
		n, ok := el.(*Integer)
		if !ok || n.Kind != U8 {
			return nil, newError(TypeMismatch, "expected a u8 array element, got %s", el.Inspect())
		}
		raw[i] = byte(n.Value)
	}
	return raw, nil
}
