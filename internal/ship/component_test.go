package ship

import (
	"math"
	"math/rand"
	"testing"
)

func testCtx(dt float64) *UpdateContext {
	return &UpdateContext{
		DT:  dt,
		Rng: rand.New(rand.NewSource(1)),
	}
}

func TestSailDeploymentConverges(t *testing.T) {
	c := NewSail(SailSquare, 40)
	c.Sail.SetTarget(0.75)

	// N ≥ 1/deploymentSpeed seconds of ticks must reach the target.
	steps := int(math.Ceil(1.0/c.Sail.DeploymentSpeed))*60 + 1
	for i := 0; i < steps; i++ {
		c.Update(testCtx(1.0 / 60.0))
	}
	if math.Abs(c.Sail.Deployment-0.75) > 1e-9 {
		t.Fatalf("deployment = %v, want 0.75", c.Sail.Deployment)
	}
}

func TestSailTargetClamped(t *testing.T) {
	c := NewSail(SailSquare, 40)
	c.Sail.SetTarget(3)
	if c.Sail.TargetDeployment != 1 {
		t.Fatalf("target should clamp to 1, got %v", c.Sail.TargetDeployment)
	}
	c.Sail.SetTarget(-2)
	if c.Sail.TargetDeployment != 0 {
		t.Fatalf("target should clamp to 0, got %v", c.Sail.TargetDeployment)
	}
}

func TestSailHighWindTear(t *testing.T) {
	c := NewSail(SailSquare, 40)
	c.Sail.Deployment = 1
	c.Sail.TargetDeployment = 1

	ctx := testCtx(1.0)
	ctx.WindSpeed = 30
	c.Update(ctx)

	want := (30.0 - 20.0) * 0.1
	if math.Abs(c.Sail.TearDamage-want) > 1e-9 {
		t.Fatalf("tear accumulation = %v, want %v", c.Sail.TearDamage, want)
	}

	// Reefed sails ride the storm out.
	c2 := NewSail(SailSquare, 40)
	c2.Sail.Deployment = 1
	c2.Sail.TargetDeployment = 1
	c2.Sail.SetReef(true, 0.6)
	c2.Update(ctx)
	if c2.Sail.TearDamage != 0 {
		t.Fatalf("reefed sail should not tear, got %v", c2.Sail.TearDamage)
	}
}

func TestSailStormDamageForcesReef(t *testing.T) {
	c := NewSail(SailSquare, 40)
	c.ApplyDamage(MaterialOak, 60, DamageStorm)
	if !c.Sail.Reefed || c.Sail.ReefFactor != 0.6 {
		t.Fatalf("heavy storm damage should force reef 0.6, got %v/%v", c.Sail.Reefed, c.Sail.ReefFactor)
	}
}

func TestAngleEfficiencyCurve(t *testing.T) {
	c := NewSail(SailSquare, 40)
	if eff := c.Sail.AngleEfficiency(0); math.Abs(eff-1) > 1e-9 {
		t.Fatalf("square sail dead-run efficiency = %v, want 1", eff)
	}
	if eff := c.Sail.AngleEfficiency(math.Pi * 0.75); eff != 0.1 {
		t.Fatalf("past 90° efficiency = %v, want 0.1", eff)
	}

	silk := NewSail(SailMagicalSilk, 40)
	if eff := silk.Sail.AngleEfficiency(math.Pi); eff != 1 {
		t.Fatalf("magical silk ignores wind angle, got %v", eff)
	}
}

func TestCannonLoadAndFireGating(t *testing.T) {
	c := NewCannon("gun", 1)

	if ok, reason := c.Cannon.CanFire(c); ok || reason != "not loaded" {
		t.Fatalf("unloaded cannon must not fire, got %v/%q", ok, reason)
	}

	if c.Cannon.Load(AmmoBall) {
		t.Fatal("loading from an empty inventory should fail")
	}
	c.Cannon.Inventory[AmmoBall] = 2
	if !c.Cannon.Load(AmmoBall) {
		t.Fatal("load should succeed with inventory")
	}
	if c.Cannon.Inventory[AmmoBall] != 1 {
		t.Fatalf("inventory should decrement, got %d", c.Cannon.Inventory[AmmoBall])
	}

	c.Cannon.AssignedCrew = 0
	if ok, reason := c.Cannon.CanFire(c); ok || reason != "undercrewed" {
		t.Fatalf("undercrewed cannon must not fire, got %v/%q", ok, reason)
	}
	c.Cannon.AssignedCrew = c.Cannon.CrewRequired

	rng := rand.New(rand.NewSource(42))
	spec, misfired := c.Cannon.Fire(c, rng)
	if spec == nil && !misfired {
		t.Fatal("fire should either shoot or misfire")
	}
	if c.Cannon.ReloadTimer <= 0 {
		t.Fatal("firing must start the reload timer")
	}
	if ok, _ := c.Cannon.CanFire(c); ok {
		t.Fatal("cannon must not fire while reloading")
	}
}

func TestMisfireProbabilityBounds(t *testing.T) {
	c := NewCannon("gun", 1)

	// Worn-out barrel: p = 0.02 + 0.1 = 0.12 at minimum.
	c.Cannon.BarrelWear = c.MaxHealth
	p := c.Cannon.MisfireProbability(c)
	if p < 0.12 || p > 0.2 {
		t.Fatalf("worn barrel misfire probability = %v, want [0.12, 0.2]", p)
	}

	// Everything maxed still caps at 0.2.
	c.Cannon.Overheat = 100
	c.Cannon.ConsecutiveFires = 50
	if p := c.Cannon.MisfireProbability(c); p > 0.2 {
		t.Fatalf("misfire probability must cap at 0.2, got %v", p)
	}
}

func TestEngineFuelDrain(t *testing.T) {
	c := NewEngine("engine", 5000)
	if !c.Engine.Start() {
		t.Fatal("fueled engine should start")
	}
	if c.Engine.Thrust(c) != 5000 {
		t.Fatalf("running engine thrust = %v, want 5000", c.Engine.Thrust(c))
	}

	ctx := testCtx(1.0)
	for i := 0; i < 1000; i++ {
		c.Update(ctx)
	}
	if c.Engine.Fuel != 0 {
		t.Fatalf("fuel should exhaust, got %v", c.Engine.Fuel)
	}
	if c.Engine.Running {
		t.Fatal("dry engine must stop")
	}
	if c.Engine.Start() {
		t.Fatal("dry engine must not restart")
	}
}

func TestRudderConvergesAndClamps(t *testing.T) {
	c := NewRudder(2)
	c.Rudder.SetTarget(10) // well past mechanical range
	if c.Rudder.TargetAngle != c.Rudder.MaxAngle {
		t.Fatalf("target should clamp to max angle, got %v", c.Rudder.TargetAngle)
	}

	for i := 0; i < 600; i++ {
		c.Update(testCtx(1.0 / 60.0))
	}
	if math.Abs(c.Rudder.Angle-c.Rudder.MaxAngle) > 1e-9 {
		t.Fatalf("rudder angle = %v, want %v", c.Rudder.Angle, c.Rudder.MaxAngle)
	}
}

func TestRudderStallReducesAuthority(t *testing.T) {
	c := NewRudder(2)

	c.Rudder.Angle = c.Rudder.stallAngle() * 0.9
	below := c.Rudder.TurningForce(c, 5)

	c.Rudder.Angle = c.Rudder.MaxAngle
	atMax := c.Rudder.TurningForce(c, 5)

	// Authority per radian must collapse past the stall angle.
	if atMax/c.Rudder.MaxAngle >= below/(c.Rudder.stallAngle()*0.9) {
		t.Fatalf("stall should reduce per-angle authority: %v vs %v", atMax, below)
	}
}

func TestRudderJamLocksAngle(t *testing.T) {
	c := NewRudder(2)
	c.Rudder.Angle = 0.3
	c.Rudder.Jammed = true
	c.Rudder.SetTarget(-0.3)

	for i := 0; i < 120; i++ {
		c.Update(testCtx(1.0 / 60.0))
	}
	if c.Rudder.Angle != 0.3 {
		t.Fatalf("jammed rudder moved to %v", c.Rudder.Angle)
	}

	c.Rudder.Unjam()
	for i := 0; i < 600; i++ {
		c.Update(testCtx(1.0 / 60.0))
	}
	if math.Abs(c.Rudder.Angle-c.Rudder.TargetAngle) > 1e-9 {
		t.Fatal("unjammed rudder should chase its target again")
	}
}

func TestAnchorRaiseTakesTime(t *testing.T) {
	c := NewAnchor(20)
	c.Anchor.Drop()

	ctx := testCtx(1.0)
	ctx.WaterDepth = 10
	c.Update(ctx)
	if !c.Anchor.Holding {
		t.Fatal("anchor should hold within rode length")
	}

	c.Anchor.Raise(10)
	if !c.Anchor.Deployed {
		t.Fatal("anchor stays deployed while hauling")
	}
	for i := 0; i < 10; i++ {
		c.Update(ctx)
	}
	if c.Anchor.Deployed {
		t.Fatal("anchor should be aboard after hauling completes")
	}
}

func TestRepairRestoresDestroyedComponent(t *testing.T) {
	c := NewEngine("engine", 1000)
	c.ApplyDamage(MaterialOak, c.MaxHealth*10, DamageExplosion)
	if !c.Destroyed {
		t.Fatal("engine should be destroyed")
	}

	c.Repair(c.MaxHealth * 0.5)
	if c.Destroyed {
		t.Fatal("substantial repair should clear destruction")
	}
	if c.Health > c.MaxHealth {
		t.Fatal("repair must not exceed max health")
	}
}

func TestUpgradeBonuses(t *testing.T) {
	c := NewCannon("gun", 1)
	before := c.Cannon.Damage
	c.UpgradeLevel()
	if c.Upgrade != 1 {
		t.Fatalf("upgrade level = %d, want 1", c.Upgrade)
	}
	if c.Cannon.Damage <= before {
		t.Fatal("cannon upgrade should raise damage")
	}
}
