// vectorgen prints the golden wire and JSON encodings asserted by the
// transferdata and messages tests. Rerun it when a message gains a field
// and paste the output into the test vectors.
package main

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/deepcare/ble-data-transfer-go/messages"
	"github.com/deepcare/ble-data-transfer-go/transferdata"
)

func emit(name string, wire []byte, werr error, jsonBytes []byte, jerr error) {
	if werr != nil {
		panic(werr)
	}
	if jerr != nil {
		panic(jerr)
	}
	fmt.Printf("%s wire: %s\n", name, hex.EncodeToString(wire))
	fmt.Printf("%s json: %s\n", name, jsonBytes)
}

func main() {
	payload := []byte("hello")
	sum := md5.Sum(payload)

	td := &transferdata.TransferData{
		CurrentChunk:  1,
		OverallChunks: 3,
		Hash:          sum[:transferdata.DigestSize],
		Data:          payload,
	}
	w, werr := td.Marshal()
	j, jerr := td.MarshalJSON()
	emit("transferdata", w, werr, j, jerr)

	req := &messages.StartTransferRequest{
		Filename: "fw.bin",
		Hash:     sum[:],
		Chunks:   3,
		Target:   messages.TargetFirmware,
	}
	w, werr = req.Marshal()
	j, jerr = req.MarshalJSON()
	emit("request", w, werr, j, jerr)

	resp := &messages.StartTransferResponse{
		Status:    messages.StatusTransfer,
		Filename:  "fw.bin",
		Chunks:    3,
		NextChunk: 2,
		Hash:      sum[:transferdata.DigestSize],
		Size:      2048,
		Duration:  1.5,
	}
	w, werr = resp.Marshal()
	j, jerr = resp.MarshalJSON()
	emit("response", w, werr, j, jerr)
}
