package interpreter

import (
	"golang.org/x/crypto/sha3"

	"github.com/holiman/uint256"

	"github.com/openevm/corevm/tosca"
)

// --- control flow ---

func opStop() status { return statusStopped }

func opReturnOrRevert(f *frame) error {
	offset, size := f.stack.pop(), f.stack.pop()
	if err := checkOffsetSize(offset, size); err != nil {
		return err
	}
	data, err := f.memory.getSlice(offset.Uint64(), size.Uint64(), f)
	if err != nil {
		return err
	}
	f.returnData = append([]byte(nil), data...)
	return nil
}

func checkValidJumpDest(f *frame, dest int64) error {
	if !f.jumps.isValidJump(dest) {
		return tosca.ErrInvalidJump
	}
	return nil
}

func opJump(f *frame) error {
	dest := f.stack.pop()
	if !dest.IsUint64() {
		return tosca.ErrInvalidJump
	}
	target := int64(dest.Uint64())
	if err := checkValidJumpDest(f, target); err != nil {
		return err
	}
	f.pc = target - 1
	return nil
}

func opJumpi(f *frame) error {
	dest, cond := f.stack.pop(), f.stack.pop()
	if cond.IsZero() {
		return nil
	}
	if !dest.IsUint64() {
		return tosca.ErrInvalidJump
	}
	target := int64(dest.Uint64())
	if err := checkValidJumpDest(f, target); err != nil {
		return err
	}
	f.pc = target - 1
	return nil
}

func opPc(f *frame) {
	f.stack.pushUndefined().SetUint64(uint64(f.pc))
}

// --- stack manipulation ---

func opPop(f *frame) { f.stack.pop() }

func opPush(f *frame, n int) {
	z := f.stack.pushUndefined()
	start := f.pc + 1
	end := start + int64(n)
	if end > int64(len(f.code)) {
		end = int64(len(f.code))
	}
	var buf [32]byte
	copy(buf[:n], f.code[start:end])
	z.SetBytes(buf[:n])
	f.pc += int64(n)
}

func opPush0(f *frame) error {
	if !f.isAtLeast(tosca.R12_Shanghai) {
		return tosca.ErrInvalidOpcode
	}
	f.stack.pushUndefined().Clear()
	return nil
}

func opDup(f *frame, n int) { f.stack.dup(n - 1) }

func opSwap(f *frame, n int) { f.stack.swap(n) }

// --- memory ---

func checkOffsetSize(offset, size *uint256.Int) error {
	if size.IsZero() {
		return nil
	}
	if !offset.IsUint64() || !size.IsUint64() {
		return tosca.ErrGasUintOverflow
	}
	if offset.Uint64()+size.Uint64() < offset.Uint64() {
		return tosca.ErrGasUintOverflow
	}
	return nil
}

func opMstore(f *frame) error {
	offset, value := f.stack.pop(), f.stack.pop()
	off, overflow := offset.Uint64WithOverflow()
	if overflow {
		return tosca.ErrGasUintOverflow
	}
	data := value.Bytes32()
	return f.memory.setWithExpansion(off, data[:], f)
}

func opMstore8(f *frame) error {
	offset, value := f.stack.pop(), f.stack.pop()
	off, overflow := offset.Uint64WithOverflow()
	if overflow {
		return tosca.ErrGasUintOverflow
	}
	return f.memory.setWithExpansion(off, []byte{byte(value.Uint64())}, f)
}

func opMload(f *frame) error {
	top := f.stack.peek()
	if !top.IsUint64() {
		return tosca.ErrGasUintOverflow
	}
	data, err := f.memory.getSlice(top.Uint64(), 32, f)
	if err != nil {
		return err
	}
	top.SetBytes32(data)
	return nil
}

func opMsize(f *frame) {
	f.stack.pushUndefined().SetUint64(f.memory.length())
}

func opMcopy(f *frame) error {
	if !f.isAtLeast(tosca.R13_Cancun) {
		return tosca.ErrInvalidOpcode
	}
	dest, src, size := f.stack.pop(), f.stack.pop(), f.stack.pop()
	if size.IsZero() {
		return nil
	}
	destOff, o1 := dest.Uint64WithOverflow()
	srcOff, o2 := src.Uint64WithOverflow()
	if o1 || o2 || !size.IsUint64() {
		return tosca.ErrGasUintOverflow
	}
	n := size.Uint64()
	if err := f.useGas(gasCopyWord * tosca.Gas(tosca.SizeInWords(n))); err != nil {
		return err
	}
	data, err := f.memory.getSlice(srcOff, n, f)
	if err != nil {
		return err
	}
	buf := append([]byte(nil), data...)
	return f.memory.setWithExpansion(destOff, buf, f)
}

// --- storage ---

func opSload(f *frame) error {
	top := f.stack.peek()
	key := tosca.Key(top.Bytes32())
	value := f.host.GetStorage(f.params.Recipient, key)
	top.SetBytes32(value[:])
	return nil
}

func opSstore(f *frame) error {
	if f.params.Static {
		return tosca.ErrWriteProtection
	}
	if f.isAtLeast(tosca.R07_Istanbul) && f.gas <= sstoreSentryGas {
		return tosca.ErrOutOfGas
	}
	key := tosca.Key(f.stack.pop().Bytes32())
	value := tosca.Word(f.stack.pop().Bytes32())
	storageStatus := f.host.SetStorage(f.params.Recipient, key, value)
	cost, refund := sstoreCost(f.params.Revision, storageStatus)
	if err := f.useGas(cost); err != nil {
		return err
	}
	f.refund += refund
	return nil
}

func opTload(f *frame) error {
	if !f.isAtLeast(tosca.R13_Cancun) {
		return tosca.ErrInvalidOpcode
	}
	top := f.stack.peek()
	key := tosca.Key(top.Bytes32())
	value := f.host.GetTransientStorage(f.params.Recipient, key)
	top.SetBytes32(value[:])
	return nil
}

func opTstore(f *frame) error {
	if !f.isAtLeast(tosca.R13_Cancun) {
		return tosca.ErrInvalidOpcode
	}
	if f.params.Static {
		return tosca.ErrWriteProtection
	}
	key := tosca.Key(f.stack.pop().Bytes32())
	value := tosca.Word(f.stack.pop().Bytes32())
	f.host.SetTransientStorage(f.params.Recipient, key, value)
	return nil
}

// --- environment / context ---

func opAddress(f *frame)   { f.stack.pushUndefined().SetBytes20(f.params.Recipient[:]) }
func opCaller(f *frame)    { f.stack.pushUndefined().SetBytes20(f.params.Sender[:]) }
func opOrigin(f *frame)    { f.stack.pushUndefined().SetBytes20(f.params.Origin[:]) }
func opCallvalue(f *frame) { f.stack.pushUndefined().SetBytes32(f.params.Value[:]) }
func opGasprice(f *frame)  { f.stack.pushUndefined().SetBytes32(f.params.GasPrice[:]) }
func opCoinbase(f *frame)  { f.stack.pushUndefined().SetBytes20(f.params.Coinbase[:]) }
func opTimestamp(f *frame) { f.stack.pushUndefined().SetUint64(uint64(f.params.Timestamp)) }
func opNumber(f *frame)    { f.stack.pushUndefined().SetUint64(uint64(f.params.BlockNumber)) }
func opGaslimit(f *frame)  { f.stack.pushUndefined().SetUint64(uint64(f.params.GasLimit)) }
func opChainid(f *frame)   { f.stack.pushUndefined().SetBytes32(f.params.ChainID[:]) }
func opPrevrandao(f *frame) {
	f.stack.pushUndefined().SetBytes32(f.params.PrevRandao[:])
}
func opCodesize(f *frame) { f.stack.pushUndefined().SetUint64(uint64(len(f.code))) }
func opGas(f *frame)      { f.stack.pushUndefined().SetUint64(uint64(f.gas)) }
func opSelfbalance(f *frame) {
	balance := f.host.GetBalance(f.params.Recipient)
	f.stack.pushUndefined().SetBytes32(balance[:])
}

func opBaseFee(f *frame) error {
	if !f.isAtLeast(tosca.R10_London) {
		return tosca.ErrInvalidOpcode
	}
	f.stack.pushUndefined().SetBytes32(f.params.BaseFee[:])
	return nil
}

func opBlobBaseFee(f *frame) error {
	if !f.isAtLeast(tosca.R13_Cancun) {
		return tosca.ErrInvalidOpcode
	}
	f.stack.pushUndefined().SetBytes32(f.params.BlobBaseFee[:])
	return nil
}

func opBlobHash(f *frame) error {
	if !f.isAtLeast(tosca.R13_Cancun) {
		return tosca.ErrInvalidOpcode
	}
	index := f.stack.pop()
	top := f.stack.pushUndefined()
	if index.IsUint64() && index.Uint64() < uint64(len(f.params.BlobHashes)) {
		h := f.params.BlobHashes[index.Uint64()]
		top.SetBytes32(h[:])
	} else {
		top.Clear()
	}
	return nil
}

func opBalance(f *frame) error {
	top := f.stack.peek()
	address := top.Bytes20()
	balance := f.host.GetBalance(tosca.Address(address))
	top.SetBytes32(balance[:])
	return nil
}

func opExtcodesize(f *frame) error {
	top := f.stack.peek()
	address := tosca.Address(top.Bytes20())
	top.SetUint64(uint64(f.host.GetCodeSize(address)))
	return nil
}

func opExtcodehash(f *frame) error {
	top := f.stack.peek()
	address := tosca.Address(top.Bytes20())
	if !f.host.AccountExists(address) {
		top.Clear()
		return nil
	}
	hash := f.host.GetCodeHash(address)
	top.SetBytes32(hash[:])
	return nil
}

func padRight(data []byte, start, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length {
		end = length
	}
	res := make([]byte, size)
	copy(res, data[start:end])
	return res
}

func genericCopy(f *frame, source []byte) error {
	memOffset, dataOffset, length := f.stack.pop(), f.stack.pop(), f.stack.pop()
	if err := checkOffsetSize(memOffset, length); err != nil {
		return err
	}
	dataOff, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOff = ^uint64(0)
	}
	n := length.Uint64()
	if err := f.useGas(gasCopyWord * tosca.Gas(tosca.SizeInWords(n))); err != nil {
		return err
	}
	dest, err := f.memory.getSlice(memOffset.Uint64(), n, f)
	if err != nil {
		return err
	}
	copy(dest, padRight(source, dataOff, n))
	return nil
}

func opCalldatacopy(f *frame) error { return genericCopy(f, f.params.Input) }
func opCodecopy(f *frame) error     { return genericCopy(f, f.code) }

func opExtcodecopy(f *frame) error {
	addr := f.stack.pop()
	memOffset, codeOffset, length := f.stack.pop(), f.stack.pop(), f.stack.pop()
	if err := checkOffsetSize(memOffset, length); err != nil {
		return err
	}
	n := length.Uint64()
	if err := f.useGas(gasCopyWord * tosca.Gas(tosca.SizeInWords(n))); err != nil {
		return err
	}
	codeOff, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOff = ^uint64(0)
	}
	dest, err := f.memory.getSlice(memOffset.Uint64(), n, f)
	if err != nil {
		return err
	}
	code := f.host.GetCode(tosca.Address(addr.Bytes20()))
	copy(dest, padRight(code, codeOff, n))
	return nil
}

func opCalldataload(f *frame) {
	top := f.stack.peek()
	if !top.IsUint64() {
		top.Clear()
		return
	}
	offset := top.Uint64()
	var buf [32]byte
	copy(buf[:], padRight(f.params.Input, offset, 32))
	top.SetBytes32(buf[:])
}

func opCalldatasize(f *frame) {
	f.stack.pushUndefined().SetUint64(uint64(len(f.params.Input)))
}

func opReturndatasize(f *frame) {
	f.stack.pushUndefined().SetUint64(uint64(len(f.returnData)))
}

func opReturndatacopy(f *frame) error {
	memOffset, dataOffset, length := f.stack.pop(), f.stack.pop(), f.stack.pop()
	dataOff, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return tosca.ErrReturnDataOutOfBounds
	}
	end := dataOff + length.Uint64()
	if end < dataOff || uint64(len(f.returnData)) < end {
		return tosca.ErrReturnDataOutOfBounds
	}
	if err := checkOffsetSize(memOffset, length); err != nil {
		return err
	}
	n := length.Uint64()
	if err := f.useGas(gasCopyWord * tosca.Gas(tosca.SizeInWords(n))); err != nil {
		return err
	}
	return f.memory.setWithExpansion(memOffset.Uint64(), f.returnData[dataOff:end], f)
}

func opBlockhash(f *frame) {
	top := f.stack.peek()
	n, overflow := top.Uint64WithOverflow()
	if overflow {
		top.Clear()
		return
	}
	upper := uint64(f.params.BlockNumber)
	lower := uint64(0)
	if upper >= 257 {
		lower = upper - 256
	}
	if n >= lower && n < upper {
		hash := f.host.GetBlockHash(int64(n))
		top.SetBytes32(hash[:])
	} else {
		top.Clear()
	}
}

// --- arithmetic / bitwise / comparison ---

func opAdd(f *frame) { a, b := f.stack.pop(), f.stack.peek(); b.Add(a, b) }
func opSub(f *frame) { a, b := f.stack.pop(), f.stack.peek(); b.Sub(a, b) }
func opMul(f *frame) { a, b := f.stack.pop(), f.stack.peek(); b.Mul(a, b) }
func opDiv(f *frame) { a, b := f.stack.pop(), f.stack.peek(); b.Div(a, b) }
func opSdiv(f *frame) { a, b := f.stack.pop(), f.stack.peek(); b.SDiv(a, b) }
func opMod(f *frame) { a, b := f.stack.pop(), f.stack.peek(); b.Mod(a, b) }
func opSmod(f *frame) { a, b := f.stack.pop(), f.stack.peek(); b.SMod(a, b) }
func opAddmod(f *frame) {
	a, b, n := f.stack.pop(), f.stack.pop(), f.stack.peek()
	n.AddMod(a, b, n)
}
func opMulmod(f *frame) {
	a, b, n := f.stack.pop(), f.stack.pop(), f.stack.peek()
	n.MulMod(a, b, n)
}
func opExp(f *frame) error {
	base, exponent := f.stack.pop(), f.stack.peek()
	if err := f.useGas(expGas(f.params.Revision, exponent)); err != nil {
		return err
	}
	exponent.Exp(base, exponent)
	return nil
}
func opSignextend(f *frame) {
	back, num := f.stack.pop(), f.stack.peek()
	num.ExtendSign(num, back)
}
func opLt(f *frame)  { a, b := f.stack.pop(), f.stack.peek(); setBool(b, a.Lt(b)) }
func opGt(f *frame)  { a, b := f.stack.pop(), f.stack.peek(); setBool(b, a.Gt(b)) }
func opSlt(f *frame) { a, b := f.stack.pop(), f.stack.peek(); setBool(b, a.Slt(b)) }
func opSgt(f *frame) { a, b := f.stack.pop(), f.stack.peek(); setBool(b, a.Sgt(b)) }
func opEq(f *frame) {
	a, b := f.stack.pop(), f.stack.peek()
	setBool(b, a.Cmp(b) == 0)
}
func opIszero(f *frame) {
	top := f.stack.peek()
	setBool(top, top.IsZero())
}
func opAnd(f *frame) { a, b := f.stack.pop(), f.stack.peek(); b.And(a, b) }
func opOr(f *frame)  { a, b := f.stack.pop(), f.stack.peek(); b.Or(a, b) }
func opXor(f *frame) { a, b := f.stack.pop(), f.stack.peek(); b.Xor(a, b) }
func opNot(f *frame) { top := f.stack.peek(); top.Not(top) }
func opByte(f *frame) {
	index, val := f.stack.pop(), f.stack.peek()
	val.Byte(index)
}
func opShl(f *frame) {
	shift, val := f.stack.pop(), f.stack.peek()
	if shift.LtUint64(256) {
		val.Lsh(val, uint(shift.Uint64()))
	} else {
		val.Clear()
	}
}
func opShr(f *frame) {
	shift, val := f.stack.pop(), f.stack.peek()
	if shift.LtUint64(256) {
		val.Rsh(val, uint(shift.Uint64()))
	} else {
		val.Clear()
	}
}
func opSar(f *frame) {
	shift, val := f.stack.pop(), f.stack.peek()
	negative := val[3]>>63 == 1
	if !shift.LtUint64(256) {
		if negative {
			val.SetAllOne()
		} else {
			val.Clear()
		}
		return
	}
	val.SRsh(val, uint(shift.Uint64()))
}

func setBool(dst *uint256.Int, value bool) {
	if value {
		dst.SetOne()
	} else {
		dst.Clear()
	}
}

func opSha3(f *frame) error {
	offset, size := f.stack.pop(), f.stack.peek()
	if err := checkOffsetSize(offset, size); err != nil {
		return err
	}
	data, err := f.memory.getSlice(offset.Uint64(), size.Uint64(), f)
	if err != nil {
		return err
	}
	if err := f.useGas(gasSha3Word * tosca.Gas(tosca.SizeInWords(size.Uint64()))); err != nil {
		return err
	}
	hash := sha3.NewLegacyKeccak256()
	hash.Write(data)
	var sum [32]byte
	hash.Sum(sum[:0])
	size.SetBytes32(sum[:])
	return nil
}

// --- logging ---

func opLog(f *frame, n int) error {
	if f.params.Static {
		return tosca.ErrWriteProtection
	}
	offset, size := f.stack.pop(), f.stack.pop()
	if err := checkOffsetSize(offset, size); err != nil {
		return err
	}
	topics := make([]tosca.Hash, n)
	for i := 0; i < n; i++ {
		topics[i] = tosca.Hash(f.stack.pop().Bytes32())
	}
	if err := f.useGas(gasLogByte * tosca.Gas(size.Uint64())); err != nil {
		return err
	}
	data, err := f.memory.getSlice(offset.Uint64(), size.Uint64(), f)
	if err != nil {
		return err
	}
	f.host.EmitLog(tosca.Log{
		Address: f.params.Recipient,
		Topics:  topics,
		Data:    append([]byte(nil), data...),
	})
	return nil
}

// --- create / call ---

// maxInitCodeSize bounds init code size from Shanghai onward (EIP-3860).
const maxInitCodeSize = 2 * 24576

func genericCreate(f *frame, kind tosca.CallKind) error {
	if f.params.Static {
		return tosca.ErrWriteProtection
	}
	value := f.stack.pop()
	offset, size := f.stack.pop(), f.stack.pop()
	var salt uint256.Int
	if kind == tosca.Create2 {
		salt = *f.stack.pop()
	}
	if err := checkOffsetSize(offset, size); err != nil {
		return err
	}
	n := size.Uint64()
	if f.isAtLeast(tosca.R12_Shanghai) && n > maxInitCodeSize {
		return tosca.ErrInvalidCode
	}
	cost := tosca.Gas(0) // the gasCreate base is charged from staticGasCosts
	if f.isAtLeast(tosca.R12_Shanghai) {
		cost += gasCreateData * tosca.Gas(tosca.SizeInWords(n))
	}
	if kind == tosca.Create2 {
		cost += gasCreate2Hash * tosca.Gas(tosca.SizeInWords(n))
	}
	if err := f.useGas(cost); err != nil {
		return err
	}
	initCode, err := f.memory.getSlice(offset.Uint64(), n, f)
	if err != nil {
		return err
	}

	result := f.stack.pushUndefined()
	result.Clear()

	val := tosca.Value(value.Bytes32())
	if f.host.GetBalance(f.params.Recipient).Cmp(val) < 0 {
		return nil
	}

	available := f.gas - f.gas/64
	data := append([]byte(nil), initCode...)
	callResult, err := f.host.Call(kind, tosca.CallParameters{
		Sender: f.params.Recipient,
		Value:  val,
		Input:  data,
		Gas:    available,
		Salt:   tosca.Hash(salt.Bytes32()),
	})
	if err != nil {
		return err
	}
	f.gas -= available - callResult.GasLeft
	f.refund += callResult.GasRefund
	if callResult.Success {
		result.SetBytes20(callResult.CreatedAddress[:])
		f.returnData = nil
	} else {
		f.returnData = append([]byte(nil), callResult.Output...)
	}
	return nil
}

func opCreate(f *frame) error  { return genericCreate(f, tosca.Create) }
func opCreate2(f *frame) error { return genericCreate(f, tosca.Create2) }

// genericCall implements the CALL/CALLCODE/DELEGATECALL/STATICCALL family.
// All four share the same 63/64 forwarding rule and stipend handling; they
// differ only in which stack arguments are present and how Sender/
// Recipient/CodeAddress/Value are assigned on the resulting CallParameters.
func genericCall(f *frame, kind tosca.CallKind) error {
	requestedGas := f.stack.pop()
	codeAddress := tosca.Address(f.stack.pop().Bytes20())

	var value uint256.Int
	if kind == tosca.Call || kind == tosca.CallCode {
		value = *f.stack.pop()
	}

	argsOffset, argsSize := f.stack.pop(), f.stack.pop()
	retOffset, retSize := f.stack.pop(), f.stack.pop()

	if err := checkOffsetSize(argsOffset, argsSize); err != nil {
		return err
	}
	if err := checkOffsetSize(retOffset, retSize); err != nil {
		return err
	}

	hasValue := !value.IsZero()
	if hasValue && f.params.Static && kind == tosca.Call {
		return tosca.ErrWriteProtection
	}

	cost := tosca.Gas(0)
	if hasValue {
		cost += CallValueTransferGas
	}
	if kind == tosca.Call && hasValue && !f.host.AccountExists(codeAddress) {
		cost += CallNewAccountGas
	}
	if err := f.useGas(cost); err != nil {
		return err
	}

	args, err := f.memory.getSlice(argsOffset.Uint64(), argsSize.Uint64(), f)
	if err != nil {
		return err
	}
	input := append([]byte(nil), args...)

	result := f.stack.pushUndefined()

	available := callGas(f.gas, 0, requestedGas)
	if hasValue && f.host.GetBalance(f.params.Recipient).Cmp(tosca.Value(value.Bytes32())) < 0 {
		setBool(result, false)
		return nil
	}
	if err := f.useGas(available); err != nil {
		return err
	}
	if hasValue {
		available += CallStipend
	}

	// A static frame forces any CALL it issues to behave like a STATICCALL,
	// since the unified RunContext.Call cannot otherwise distinguish "CALL
	// that happens to transfer no value" from "CALL forced read-only by an
	// enclosing STATICCALL".
	if f.params.Static && kind == tosca.Call {
		kind = tosca.StaticCall
	}

	params := tosca.CallParameters{
		Input:       input,
		Gas:         available,
		CodeAddress: codeAddress,
	}
	switch kind {
	case tosca.Call:
		params.Sender = f.params.Recipient
		params.Recipient = codeAddress
		params.Value = tosca.Value(value.Bytes32())
	case tosca.StaticCall:
		params.Sender = f.params.Recipient
		params.Recipient = codeAddress
	case tosca.CallCode:
		params.Sender = f.params.Recipient
		params.Recipient = f.params.Recipient
		params.Value = tosca.Value(value.Bytes32())
	case tosca.DelegateCall:
		params.Sender = f.params.Sender
		params.Recipient = f.params.Recipient
		params.Value = f.params.Value
	}

	callResult, err := f.host.Call(kind, params)
	if err != nil {
		return err
	}
	f.gas += callResult.GasLeft
	f.refund += callResult.GasRefund
	setBool(result, callResult.Success)
	if callResult.Success {
		f.returnData = append([]byte(nil), callResult.Output...)
		n := retSize.Uint64()
		if n > 0 {
			data := padRight(callResult.Output, 0, n)
			if err := f.memory.setWithExpansion(retOffset.Uint64(), data, f); err != nil {
				return err
			}
		}
	} else {
		f.returnData = append([]byte(nil), callResult.Output...)
	}
	return nil
}

func opCall(f *frame) error         { return genericCall(f, tosca.Call) }
func opCallCode(f *frame) error     { return genericCall(f, tosca.CallCode) }
func opStaticCall(f *frame) error   { return genericCall(f, tosca.StaticCall) }
func opDelegateCall(f *frame) error { return genericCall(f, tosca.DelegateCall) }

// --- self destruct ---

func opSelfdestruct(f *frame) (status, error) {
	if f.params.Static {
		return statusFailed, tosca.ErrWriteProtection
	}
	beneficiary := tosca.Address(f.stack.pop().Bytes20())
	cost := selfdestructCost(f.host, f.params.Recipient, beneficiary)
	if err := f.useGas(cost); err != nil {
		return statusFailed, err
	}
	destructed := f.host.SelfDestruct(f.params.Recipient, beneficiary)
	if destructed && !f.isAtLeast(tosca.R10_London) {
		f.refund += SelfdestructRefundGas
	}
	return statusSelfDestructed, nil
}
