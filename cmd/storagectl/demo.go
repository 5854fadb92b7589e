package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/KleaSCM/Aurelia/internal/controller"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Drive one write command purely through MMIO doorbells",
	Long: `demo builds a fresh stack, lays out a 64-byte submission queue
entry by hand, rings the submission doorbell, and ticks the controller
until the command completes — logging each fetch/execute/complete
transition. It exercises the same register path a real host driver
would, rather than calling the FTL directly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildStack()
		if err != nil {
			return err
		}

		logger := log.Default()
		s.ctrl.SetHook(func(e controller.Event) {
			logger.Printf("cmd=%s kind=%v opcode=0x%02X status=0x%04X", e.CommandID, e.Kind, e.Opcode, e.Status)
		})

		const (
			asq     = 0x5000
			acq     = 0x6000
			scratch = 0x9000
		)

		s.ctrl.OnWrite(flagBase+0x14, 1) // CC.enable
		s.ctrl.OnWrite(flagBase+0x28, asq)
		s.ctrl.OnWrite(flagBase+0x30, acq)

		s.ram.Write(scratch, 0xDEADBEEF)

		s.ram.Write(asq+0, 0x01)     // opcode: write
		s.ram.Write(asq+24, scratch) // data buffer
		s.ram.Write(asq+40, flagLba) // lba

		s.ctrl.OnWrite(flagBase+0x1000, 1) // ring SQ0TDBL
		for i := 0; i < 50; i++ {
			s.ctrl.Tick()
		}

		status := s.ram.Read(acq + 12)
		logger.Printf("completion status word: 0x%08X", status)
		return nil
	},
}
