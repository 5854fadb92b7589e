package main

import (
	"github.com/KleaSCM/Aurelia/bus"
	"github.com/KleaSCM/Aurelia/internal/controller"
	"github.com/KleaSCM/Aurelia/internal/ftl"
	"github.com/KleaSCM/Aurelia/internal/nand"
)

// stack is the freshly-erased chip/FTL/controller triple every subcommand
// builds its demonstration on.
type stack struct {
	chip *nand.Chip
	ftl  *ftl.Ftl
	ctrl *controller.Controller
	ram  *bus.HostRAM
}

func buildStack() (*stack, error) {
	chip := nand.NewChip(flagBlocks)
	f, err := ftl.New(chip, flagBlocks)
	if err != nil {
		return nil, err
	}
	ram := bus.NewHostRAM(1 << 20)
	ctrl := controller.New(f, ram, flagBase)
	return &stack{chip: chip, ftl: f, ctrl: ctrl, ram: ram}, nil
}
